package decode

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"seqmark.io/hmm/model"
)

func TestEnumerateAllHypotheses(t *testing.T) {
	m := model.EwensGrant()

	enum, err := Enumerate(m, symbols("22"))
	require.NoError(t, err)

	// Every probability in the model is nonzero, so all four sequences
	// are valid hypotheses.
	require.Len(t, enum.Hypotheses, 4)

	require.NotNil(t, enum.Best)
	if diff := cmp.Diff([]string{"S2", "S1"}, enum.Best.States); diff != "" {
		t.Errorf("unexpected best sequence (-want +got):\n%s", diff)
	}
	want := math.Log10(0.5) + math.Log10(0.75) + math.Log10(0.8) + math.Log10(0.5)
	require.InDelta(t, want, enum.Best.LogProb, 1e-12)
}

func TestEnumerateAgreesWithViterbi(t *testing.T) {
	tests := []struct {
		name     string
		m        *model.Model
		observed []string
	}{
		{"ewens_grant", model.EwensGrant(), symbols("222")},
		{"ewens_grant_longer", model.EwensGrant(), symbols("1212")},
		{"gc_content", model.GCContent(), symbols("bbaba")},
		{"eddy_splice_site", model.EddySpliceSite(), symbols("CAGTA")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path, err := ViterbiPath(tc.m, tc.observed)
			require.NoError(t, err)

			enum, err := Enumerate(tc.m, tc.observed)
			require.NoError(t, err)
			require.NotNil(t, enum.Best)
			require.InDelta(t, path.LogProb, enum.Best.LogProb, 1e-12)
		})
	}
}

func TestEnumerateTerminalStateConstraint(t *testing.T) {
	m := model.EddySpliceSite()

	enum, err := Enumerate(m, symbols("CGT"))
	require.NoError(t, err)
	require.NotEmpty(t, enum.Hypotheses)

	for _, hyp := range enum.Hypotheses {
		require.Equal(t, "I", hyp.States[len(hyp.States)-1],
			"only terminating states may end a valid sequence")
	}
}

func TestEnumerateNoValidSequence(t *testing.T) {
	m := model.EddySpliceSite()

	_, err := Enumerate(m, symbols("CT"))
	require.ErrorIs(t, err, ErrNoExplanation)

	_, err = Enumerate(m, nil)
	require.ErrorIs(t, err, ErrNoExplanation)
}
