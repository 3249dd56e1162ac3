package decode

import (
	"math"

	"seqmark.io/hmm/model"
)

// Score computes the log10 probability of one fully specified hypothesis:
// that the model walked exactly seqStates while emitting exactly
// seqObserved. The second return value is false when the hypothesis is
// impossible — the first state cannot start a sequence, some consecutive
// pair of states has no transition edge, some state cannot emit the
// corresponding symbol, or the model has an implied terminal state and the
// last state cannot terminate. An impossible hypothesis is an ordinary
// outcome of exploring the hypothesis space, not an error.
func Score(m *model.Model, seqStates []string, seqObserved []string) (float64, bool) {
	if len(seqStates) == 0 || len(seqStates) != len(seqObserved) {
		return 0, false
	}

	p := 0.0

	// Termination is the transition to the implied end state: the last
	// state must be able to take it, and its probability is part of the
	// joint probability just like any other transition.
	if m.HasTerminalState() {
		pTerm := m.Termination(seqStates[len(seqStates)-1])
		if pTerm == 0.0 {
			return 0, false
		}
		p += math.Log10(pTerm)
	}
	for i, name := range seqStates {
		if !m.Contains(name) {
			return 0, false
		}
		if i == 0 {
			pInit := m.Initial(name)
			if pInit == 0.0 {
				return 0, false
			}
			p += math.Log10(pInit)
		} else {
			pTran := m.Transition(seqStates[i-1], name)
			if pTran == 0.0 {
				return 0, false
			}
			p += math.Log10(pTran)
		}

		pEmit := m.Emission(name, seqObserved[i])
		if pEmit == 0.0 {
			return 0, false
		}
		p += math.Log10(pEmit)
	}

	return p, true
}
