package decode

import (
	"math"

	"seqmark.io/hmm/model"
)

// Cell is one trellis entry: the best log10 probability of any valid path
// ending in a given state after a given prefix of the observation, or
// unreachable when no such path exists.
type Cell struct {
	LogProb   float64
	Reachable bool
}

// Column maps every state name to its cell at one observation position.
type Column map[string]Cell

// Trellis is the forward dynamic-programming table, one column per
// observed symbol. It is built once per decoding call and read-only
// afterwards.
type Trellis []Column

// BuildTrellis runs forward dynamic programming in log space over the
// observation. Column 0 combines initial and emission probabilities;
// column i maximizes over all reachable predecessors with a transition
// edge. When the model has an implied terminal state the last column keeps
// only terminating states, with their termination probability folded in.
//
// Runs in O(len(observed) * |states|^2) time. States are visited in model
// definition order, so equal maxima resolve to the earliest defined state
// and repeated calls produce identical trellises.
func BuildTrellis(m *model.Model, observed []string) Trellis {
	names := m.StateNames()
	trellis := make(Trellis, 0, len(observed))
	var prior Column

	for i, symbol := range observed {
		column := make(Column, len(names))

		if i == 0 {
			for _, name := range names {
				pInit := m.Initial(name)
				pEmit := m.Emission(name, symbol)
				if pInit == 0.0 || pEmit == 0.0 {
					column[name] = Cell{}
					continue
				}
				column[name] = Cell{
					LogProb:   math.Log10(pInit) + math.Log10(pEmit),
					Reachable: true,
				}
			}
		} else {
			for _, name := range names {
				pEmit := m.Emission(name, symbol)
				if pEmit == 0.0 {
					column[name] = Cell{}
					continue
				}
				column[name] = bestExtension(m, names, prior, name, pEmit)
			}
		}

		if i == len(observed)-1 && m.HasTerminalState() {
			applyTermination(m, names, column)
		}

		trellis = append(trellis, column)
		prior = column
	}

	return trellis
}

// bestExtension maximizes over every reachable predecessor with an edge to
// the target state.
func bestExtension(m *model.Model, names []string, prior Column, name string, pEmit float64) Cell {
	best := Cell{}
	for _, prev := range names {
		priorCell := prior[prev]
		if !priorCell.Reachable {
			continue
		}
		pTran := m.Transition(prev, name)
		if pTran == 0.0 {
			continue
		}
		score := priorCell.LogProb + math.Log10(pTran)
		if !best.Reachable || score > best.LogProb {
			best = Cell{LogProb: score, Reachable: true}
		}
	}
	if best.Reachable {
		best.LogProb += math.Log10(pEmit)
	}
	return best
}

// applyTermination enforces the implied-terminal-state rule on the final
// column: non-terminating states become unreachable and the rest pay their
// termination probability.
func applyTermination(m *model.Model, names []string, column Column) {
	for _, name := range names {
		pTerm := m.Termination(name)
		if pTerm == 0.0 {
			column[name] = Cell{}
			continue
		}
		cell := column[name]
		if cell.Reachable {
			cell.LogProb += math.Log10(pTerm)
			column[name] = cell
		}
	}
}
