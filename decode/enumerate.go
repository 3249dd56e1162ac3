package decode

import (
	"seqmark.io/hmm/model"
)

// Hypothesis is one scored state sequence from an exhaustive enumeration.
type Hypothesis struct {
	States  []string `json:"states"`
	LogProb float64  `json:"log_prob"`
}

// Enumeration holds every valid hypothesis for an observation and points
// at the best one.
type Enumeration struct {
	Hypotheses []Hypothesis
	Best       *Hypothesis
}

// Enumerate scores every possible state sequence of the observation's
// length — the full Cartesian product, |states|^len(observed) sequences —
// and returns the valid ones together with the best. It exists as a
// brute-force reference for validating Viterbi decoding on small models;
// the cost is exponential and callers are expected to bound the
// observation length themselves.
//
// Returns ErrNoExplanation when no sequence is valid. The best hypothesis
// always matches the ViterbiPath score exactly; the labeled sequence may
// differ only when several sequences tie for the maximum.
func Enumerate(m *model.Model, observed []string) (Enumeration, error) {
	if len(observed) == 0 {
		return Enumeration{}, ErrNoExplanation
	}

	names := m.StateNames()
	seq := make([]string, len(observed))
	indexes := make([]int, len(observed))

	var enum Enumeration
	bestIdx := -1

	for {
		for i, idx := range indexes {
			seq[i] = names[idx]
		}
		if logProb, ok := Score(m, seq, observed); ok {
			enum.Hypotheses = append(enum.Hypotheses, Hypothesis{
				States:  append([]string(nil), seq...),
				LogProb: logProb,
			})
			if bestIdx < 0 || logProb > enum.Hypotheses[bestIdx].LogProb {
				bestIdx = len(enum.Hypotheses) - 1
			}
		}

		// Advance the odometer, last position fastest.
		pos := len(indexes) - 1
		for pos >= 0 {
			indexes[pos]++
			if indexes[pos] < len(names) {
				break
			}
			indexes[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	if bestIdx < 0 {
		return Enumeration{}, ErrNoExplanation
	}
	enum.Best = &enum.Hypotheses[bestIdx]
	return enum, nil
}
