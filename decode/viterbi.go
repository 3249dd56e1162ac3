package decode

import (
	"errors"
	"fmt"
	"math"

	"seqmark.io/hmm/model"
)

// ErrNoExplanation reports that no valid state path can produce the
// observation under the model: either no state can emit some prefix of the
// observation, or the terminal-state constraint eliminated every candidate.
// It is a recoverable condition, distinct from a malformed model or a
// broken trellis.
var ErrNoExplanation = errors.New("no valid state path explains the observation")

// Path is the result of Viterbi decoding: the most probable state sequence
// and its overall log10 probability.
type Path struct {
	States  []string `json:"states"`
	LogProb float64  `json:"log_prob"`
}

// ViterbiPath finds the single most probable state sequence explaining the
// observation. It builds the trellis forward, picks the best state in the
// last column, and reconstructs the path backwards. A trellis cell holds
// the best score of any path ending in that state, so the true predecessor
// of an already-chosen successor is the state maximizing cell score plus
// the log10 transition probability into that successor, not the best cell
// alone.
//
// Returns ErrNoExplanation when the observation cannot be produced by any
// valid path. When several paths tie for the maximum the earliest defined
// state wins at every step, so repeated calls return identical paths.
func ViterbiPath(m *model.Model, observed []string) (Path, error) {
	if len(observed) == 0 {
		return Path{}, fmt.Errorf("empty observation: %w", ErrNoExplanation)
	}

	trellis := BuildTrellis(m, observed)
	names := m.StateNames()

	next, cell := bestInColumn(names, trellis[len(trellis)-1])
	if next == "" {
		return Path{}, ErrNoExplanation
	}

	// The path is collected back to front and reversed at the end.
	states := make([]string, 0, len(trellis))
	states = append(states, next)
	overall := cell.LogProb

	for i := len(trellis) - 2; i >= 0; i-- {
		chosen := bestPredecessor(m, names, trellis[i], next)
		if chosen == "" {
			return Path{}, fmt.Errorf("trellis inconsistency at column %d: state %q has no reachable predecessor", i+1, next)
		}
		states = append(states, chosen)
		next = chosen
	}

	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}

	return Path{States: states, LogProb: overall}, nil
}

// bestInColumn selects the maximum-scoring reachable state, visiting
// states in model definition order. Returns "" when nothing is reachable.
func bestInColumn(names []string, column Column) (string, Cell) {
	bestName := ""
	var best Cell
	for _, name := range names {
		cell := column[name]
		if !cell.Reachable {
			continue
		}
		if bestName == "" || cell.LogProb > best.LogProb {
			bestName = name
			best = cell
		}
	}
	return bestName, best
}

// bestPredecessor selects the reachable state the optimal path came
// through: the one maximizing its own cell score plus the transition into
// the already-chosen successor. States are visited in model definition
// order. Returns "" when no reachable state has an edge to the successor.
func bestPredecessor(m *model.Model, names []string, column Column, next string) string {
	bestName := ""
	bestScore := 0.0
	for _, name := range names {
		cell := column[name]
		if !cell.Reachable {
			continue
		}
		pTran := m.Transition(name, next)
		if pTran == 0.0 {
			continue
		}
		score := cell.LogProb + math.Log10(pTran)
		if bestName == "" || score > bestScore {
			bestName = name
			bestScore = score
		}
	}
	return bestName
}
