package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"seqmark.io/hmm/utils"
)

// probTolerance bounds how far each probability table may drift from
// summing to exactly 1.0 before construction fails.
const probTolerance = 1e-6

// Model is an immutable hidden Markov model: a set of named states with
// initial, emission, transition and termination probability tables, plus
// the alphabet of symbols the states may emit.
//
// A Model is validated once in New and never mutated afterwards, so it is
// safe for unlimited concurrent readers.
type Model struct {
	alphabet map[string]bool
	symbols  []string
	order    []string
	states   map[string]*State

	initialStates     []string
	terminatingStates []string
	hasTerminalState  bool
}

// New builds a Model from an alphabet and a list of states.
//
// Construction fails with a descriptive error when the definition is
// malformed: duplicate or empty state names, transitions to nonexistent
// states, emissions of symbols outside the alphabet, probabilities outside
// [0,1], probability tables that do not sum to 1, or states unreachable
// from the initial distribution.
//
// If any state carries a nonzero termination probability the model has an
// implied terminal state: only terminating states may legally end a
// sequence.
func New(alphabet []string, states []State) (*Model, error) {
	if len(alphabet) == 0 {
		return nil, fmt.Errorf("model: alphabet is empty")
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("model: no states defined")
	}

	m := &Model{
		alphabet: make(map[string]bool, len(alphabet)),
		states:   make(map[string]*State, len(states)),
	}
	for _, symbol := range alphabet {
		if symbol == "" {
			return nil, fmt.Errorf("model: alphabet contains an empty symbol")
		}
		if !m.alphabet[symbol] {
			m.symbols = append(m.symbols, symbol)
		}
		m.alphabet[symbol] = true
	}

	for i := range states {
		state := states[i]
		if state.Name == "" {
			return nil, fmt.Errorf("model: state #%d has an empty name", i)
		}
		if _, exists := m.states[state.Name]; exists {
			return nil, fmt.Errorf("model: duplicate state name %q", state.Name)
		}
		m.states[state.Name] = &state
		m.order = append(m.order, state.Name)

		if state.Initial > 0.0 {
			m.initialStates = append(m.initialStates, state.Name)
		}
		if state.Termination > 0.0 {
			m.hasTerminalState = true
			m.terminatingStates = append(m.terminatingStates, state.Name)
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) validate() error {
	initialTotal := 0.0
	for _, name := range m.order {
		state := m.states[name]

		if err := checkProb(state.Initial, "state %q: initial", name); err != nil {
			return err
		}
		if err := checkProb(state.Termination, "state %q: termination", name); err != nil {
			return err
		}
		initialTotal += state.Initial

		emissionTotal := 0.0
		for symbol, p := range state.Emissions {
			if !m.alphabet[symbol] {
				return fmt.Errorf("model: state %q emits symbol %q which is not in the alphabet", name, symbol)
			}
			if err := checkProb(p, "state %q: emission of %q", name, symbol); err != nil {
				return err
			}
			emissionTotal += p
		}
		if math.Abs(emissionTotal-1.0) > probTolerance {
			return fmt.Errorf("model: state %q: emission probabilities sum to %v, want 1.0", name, emissionTotal)
		}

		transitionTotal := state.Termination
		for to, p := range state.Transitions {
			if _, exists := m.states[to]; !exists {
				return fmt.Errorf("model: state %q transitions to nonexistent state %q", name, to)
			}
			if err := checkProb(p, "state %q: transition to %q", name, to); err != nil {
				return err
			}
			transitionTotal += p
		}
		if math.Abs(transitionTotal-1.0) > probTolerance {
			return fmt.Errorf("model: state %q: transition probabilities (plus termination) sum to %v, want 1.0",
				name, transitionTotal)
		}
	}

	if math.Abs(initialTotal-1.0) > probTolerance {
		return fmt.Errorf("model: initial probabilities sum to %v, want 1.0", initialTotal)
	}
	if len(m.initialStates) == 0 {
		return fmt.Errorf("model: no state has a nonzero initial probability")
	}

	return m.checkReachability()
}

// checkReachability walks transition edges from the initial states and
// rejects models with states no valid sequence can ever visit.
func (m *Model) checkReachability() error {
	reached := make(map[string]bool, len(m.order))
	queue := append([]string(nil), m.initialStates...)
	for _, name := range m.initialStates {
		reached[name] = true
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for to, p := range m.states[name].Transitions {
			if p > 0.0 && !reached[to] {
				reached[to] = true
				queue = append(queue, to)
			}
		}
	}
	for _, name := range m.order {
		if !reached[name] {
			return fmt.Errorf("model: state %q is unreachable from the initial states", name)
		}
	}
	return nil
}

func checkProb(p float64, format string, args ...interface{}) error {
	if p < 0.0 || p > 1.0 || math.IsNaN(p) {
		prefix := fmt.Sprintf(format, args...)
		return fmt.Errorf("model: %s probability %v is outside [0,1]", prefix, p)
	}
	return nil
}

// StateNames returns the state names in definition order. The order is
// stable and shared by every decoding operation, which keeps tie-breaking
// between equally scored states deterministic.
func (m *Model) StateNames() []string {
	return append([]string(nil), m.order...)
}

// Alphabet returns the emittable symbols in definition order.
func (m *Model) Alphabet() []string {
	return append([]string(nil), m.symbols...)
}

// InAlphabet reports whether the symbol may be emitted by any state.
func (m *Model) InAlphabet(symbol string) bool {
	return m.alphabet[symbol]
}

// InitialStates returns the names of states with a nonzero initial
// probability.
func (m *Model) InitialStates() []string {
	return append([]string(nil), m.initialStates...)
}

// TerminatingStates returns the names of states with a nonzero termination
// probability. Only these may end a sequence when HasTerminalState is true.
func (m *Model) TerminatingStates() []string {
	return append([]string(nil), m.terminatingStates...)
}

// HasTerminalState reports whether the model has an implied terminal state.
func (m *Model) HasTerminalState() bool {
	return m.hasTerminalState
}

// Contains reports whether the model has a state with the given name.
func (m *Model) Contains(name string) bool {
	_, exists := m.states[name]
	return exists
}

// Initial returns the initial probability of the named state, or 0 for
// unknown states.
func (m *Model) Initial(name string) float64 {
	state, exists := m.states[name]
	if !exists {
		return 0.0
	}
	return state.Initial
}

// Termination returns the termination probability of the named state, or 0
// for unknown states.
func (m *Model) Termination(name string) float64 {
	state, exists := m.states[name]
	if !exists {
		return 0.0
	}
	return state.Termination
}

// Emission returns the probability of the named state emitting the symbol.
// Unknown states and symbols missing from the emission table collapse to 0.
func (m *Model) Emission(name string, symbol string) float64 {
	state, exists := m.states[name]
	if !exists {
		return 0.0
	}
	return state.Emission(symbol)
}

// Transition returns the probability of the edge from one named state to
// another. Unknown states and missing edges collapse to 0.
func (m *Model) Transition(from string, to string) float64 {
	state, exists := m.states[from]
	if !exists {
		return 0.0
	}
	return state.Transition(to)
}

// Connected reports whether there is an edge with nonzero probability from
// one named state to another.
func (m *Model) Connected(from string, to string) bool {
	return m.Transition(from, to) > 0.0
}

// Fingerprint returns a stable hash of the model's canonical form. Two
// models built from the same alphabet and state definitions produce the
// same fingerprint across processes, so it can serve as a cache key.
func (m *Model) Fingerprint() uint64 {
	var b strings.Builder

	symbols := append([]string(nil), m.symbols...)
	sort.Strings(symbols)
	for _, symbol := range symbols {
		b.WriteString(symbol)
		b.WriteByte(0)
	}
	b.WriteByte(1)

	for _, name := range m.order {
		state := m.states[name]
		b.WriteString(name)
		b.WriteByte(0)
		writeProb(&b, state.Initial)
		writeProb(&b, state.Termination)
		writeProbTable(&b, state.Emissions)
		writeProbTable(&b, state.Transitions)
		b.WriteByte(1)
	}

	return utils.HashString(b.String())
}

func writeProb(b *strings.Builder, p float64) {
	b.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
	b.WriteByte(0)
}

func writeProbTable(b *strings.Builder, table map[string]float64) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte(0)
		writeProb(b, table[key])
	}
	b.WriteByte(2)
}
