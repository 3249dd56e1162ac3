package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"seqmark.io/hmm/model"
)

func TestTrellisFirstColumn(t *testing.T) {
	m := model.EwensGrant()

	trellis := BuildTrellis(m, []string{"2"})
	require.Len(t, trellis, 1)

	s1 := trellis[0]["S1"]
	require.True(t, s1.Reachable)
	require.InDelta(t, math.Log10(0.5)+math.Log10(0.5), s1.LogProb, 1e-12)

	s2 := trellis[0]["S2"]
	require.True(t, s2.Reachable)
	require.InDelta(t, math.Log10(0.5)+math.Log10(0.75), s2.LogProb, 1e-12)
}

func TestTrellisMaximizesOverPredecessors(t *testing.T) {
	m := model.EwensGrant()

	trellis := BuildTrellis(m, []string{"2", "2", "2"})
	require.Len(t, trellis, 3)

	col0S2 := math.Log10(0.5) + math.Log10(0.75)

	// Both predecessors reach S1 in column 1; the path through S2 wins.
	col1S1 := col0S2 + math.Log10(0.8) + math.Log10(0.5)
	require.InDelta(t, col1S1, trellis[1]["S1"].LogProb, 1e-12)

	col1S2 := col0S2 + math.Log10(0.2) + math.Log10(0.75)
	require.InDelta(t, col1S2, trellis[1]["S2"].LogProb, 1e-12)

	// In column 2 the self-loop beats the path through S2.
	col2S1 := col1S1 + math.Log10(0.9) + math.Log10(0.5)
	require.InDelta(t, col2S1, trellis[2]["S1"].LogProb, 1e-12)
}

func TestTrellisUnemittableSymbol(t *testing.T) {
	m, err := model.New(
		[]string{"x", "y", "z"},
		[]model.State{
			{
				Name:        "S",
				Initial:     1.0,
				Emissions:   map[string]float64{"x": 0.5, "y": 0.5},
				Transitions: map[string]float64{"S": 1.0},
			},
		},
	)
	require.NoError(t, err)

	trellis := BuildTrellis(m, []string{"z", "x"})
	require.Len(t, trellis, 2)
	require.False(t, trellis[0]["S"].Reachable)
	// No reachable predecessor, so the second column is dead as well.
	require.False(t, trellis[1]["S"].Reachable)
}

func TestTrellisTerminalAdjustment(t *testing.T) {
	m := model.EddySpliceSite()

	trellis := BuildTrellis(m, []string{"C", "G", "T"})
	require.Len(t, trellis, 3)

	last := trellis[2]
	require.False(t, last["E"].Reachable, "non-terminating state must be forced unreachable")
	require.False(t, last["5"].Reachable)

	col1SpliceSite := math.Log10(0.25) + math.Log10(0.1) + math.Log10(0.95)
	wantIntron := col1SpliceSite + math.Log10(1.0) + math.Log10(0.4) + math.Log10(0.1)
	require.True(t, last["I"].Reachable)
	require.InDelta(t, wantIntron, last["I"].LogProb, 1e-12)
}
