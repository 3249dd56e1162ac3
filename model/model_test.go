package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleStates() []State {
	return []State{
		{
			Name:        "S1",
			Initial:     0.5,
			Emissions:   map[string]float64{"1": 0.5, "2": 0.5},
			Transitions: map[string]float64{"S1": 0.9, "S2": 0.1},
		},
		{
			Name:        "S2",
			Initial:     0.5,
			Emissions:   map[string]float64{"1": 0.25, "2": 0.75},
			Transitions: map[string]float64{"S1": 0.8, "S2": 0.2},
		},
	}
}

func TestNewSimpleModel(t *testing.T) {
	m, err := New([]string{"1", "2"}, simpleStates())
	require.NoError(t, err)

	require.Equal(t, 0.5, m.Initial("S1"))
	require.Equal(t, 0.8, m.Transition("S2", "S1"))
	require.Equal(t, []string{"S1", "S2"}, m.InitialStates())
	require.False(t, m.HasTerminalState())
	require.Empty(t, m.TerminatingStates())
	require.Equal(t, []string{"S1", "S2"}, m.StateNames())
}

func TestNewImpliedTerminalState(t *testing.T) {
	m := EddySpliceSite()

	require.Equal(t, []string{"E"}, m.InitialStates())
	require.True(t, m.HasTerminalState())
	require.Equal(t, []string{"I"}, m.TerminatingStates())
	require.Equal(t, 0.1, m.Termination("I"))
}

func TestLookupsCollapseToZero(t *testing.T) {
	m := EddySpliceSite()

	require.Equal(t, 0.0, m.Emission("5", "C"), "symbol missing from the emission table")
	require.Equal(t, 0.0, m.Transition("E", "I"), "missing transition edge")
	require.Equal(t, 0.0, m.Emission("nope", "A"), "unknown state")
	require.False(t, m.Connected("E", "I"))
	require.True(t, m.Connected("5", "I"))
	require.False(t, m.Contains("nope"))
}

func TestNewRejectsMalformedModels(t *testing.T) {
	alphabet := []string{"1", "2"}

	tests := []struct {
		name     string
		alphabet []string
		states   []State
		wantErr  string
	}{
		{
			name:     "empty alphabet",
			alphabet: nil,
			states:   simpleStates(),
			wantErr:  "alphabet is empty",
		},
		{
			name:     "no states",
			alphabet: alphabet,
			states:   nil,
			wantErr:  "no states",
		},
		{
			name:     "duplicate state names",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 0.5, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"S": 1.0}},
				{Name: "S", Initial: 0.5, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"S": 1.0}},
			},
			wantErr: "duplicate state name",
		},
		{
			name:     "dangling transition",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 1.0, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"missing": 1.0}},
			},
			wantErr: "nonexistent state",
		},
		{
			name:     "emission outside alphabet",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 1.0, Emissions: map[string]float64{"9": 1.0}, Transitions: map[string]float64{"S": 1.0}},
			},
			wantErr: "not in the alphabet",
		},
		{
			name:     "probability above one",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 1.5, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"S": 1.0}},
			},
			wantErr: "outside [0,1]",
		},
		{
			name:     "emissions do not sum to one",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 1.0, Emissions: map[string]float64{"1": 0.5, "2": 0.2}, Transitions: map[string]float64{"S": 1.0}},
			},
			wantErr: "emission probabilities sum",
		},
		{
			name:     "transitions plus termination do not sum to one",
			alphabet: alphabet,
			states: []State{
				{Name: "S", Initial: 1.0, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"S": 0.5}, Termination: 0.2},
			},
			wantErr: "transition probabilities",
		},
		{
			name:     "initial probabilities do not sum to one",
			alphabet: alphabet,
			states: []State{
				{Name: "A", Initial: 0.5, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"A": 0.5, "B": 0.5}},
				{Name: "B", Initial: 0.2, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"A": 0.5, "B": 0.5}},
			},
			wantErr: "initial probabilities sum",
		},
		{
			name:     "unreachable state",
			alphabet: alphabet,
			states: []State{
				{Name: "A", Initial: 1.0, Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"A": 1.0}},
				{Name: "B", Emissions: map[string]float64{"1": 1.0}, Transitions: map[string]float64{"A": 1.0}},
			},
			wantErr: "unreachable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.alphabet, tc.states)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, EwensGrant().Fingerprint(), EwensGrant().Fingerprint())
	require.Equal(t, EddySpliceSite().Fingerprint(), EddySpliceSite().Fingerprint())
	require.NotEqual(t, EwensGrant().Fingerprint(), GCContent().Fingerprint())

	tweaked, err := New([]string{"1", "2"}, []State{
		simpleStates()[0],
		{
			Name:        "S2",
			Initial:     0.5,
			Emissions:   map[string]float64{"1": 0.3, "2": 0.7},
			Transitions: map[string]float64{"S1": 0.8, "S2": 0.2},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, EwensGrant().Fingerprint(), tweaked.Fingerprint())
}
