package model

// Built-in example models used by the demo binary and the test suites.

// EwensGrant returns the simple two-state HMM from section 12.1 of Ewens
// and Grant, "Statistical Methods in Bioinformatics: An Introduction,
// 2nd Ed.", 2005.
func EwensGrant() *Model {
	return mustBuild(New(
		[]string{"1", "2"},
		[]State{
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
		},
	))
}

// EddySpliceSite returns the exon/splice-site/intron HMM from figure 1 of
// Eddy SR, "What is a hidden Markov model?", Nature Biotechnology 22(10),
// 2004. The intron state carries a termination probability, so the model
// has an implied terminal state.
func EddySpliceSite() *Model {
	return mustBuild(New(
		[]string{"A", "C", "G", "T"},
		[]State{
			{
				Name:        "E",
				Initial:     1.0,
				Emissions:   map[string]float64{"A": 0.25, "C": 0.25, "G": 0.25, "T": 0.25},
				Transitions: map[string]float64{"E": 0.9, "5": 0.1},
			},
			{
				Name:        "5",
				Emissions:   map[string]float64{"A": 0.05, "G": 0.95},
				Transitions: map[string]float64{"I": 1.0},
			},
			{
				Name:        "I",
				Emissions:   map[string]float64{"A": 0.4, "C": 0.1, "G": 0.1, "T": 0.4},
				Transitions: map[string]float64{"I": 0.9},
				Termination: 0.1,
			},
		},
	))
}

// GCContent returns a two-state HMM that segments a genome into GC-rich
// and GC-poor regions. The symbol 'b' stands for G or C, the symbol 'a'
// for A or T.
func GCContent() *Model {
	return mustBuild(New(
		[]string{"a", "b"},
		[]State{
			{
				Name:        "GC-poor",
				Initial:     0.5,
				Emissions:   map[string]float64{"a": 0.6, "b": 0.4},
				Transitions: map[string]float64{"GC-poor": 0.75, "GC-rich": 0.25},
			},
			{
				Name:        "GC-rich",
				Initial:     0.5,
				Emissions:   map[string]float64{"a": 0.35, "b": 0.65},
				Transitions: map[string]float64{"GC-poor": 0.25, "GC-rich": 0.75},
			},
		},
	))
}

func mustBuild(m *Model, err error) *Model {
	if err != nil {
		panic(err)
	}
	return m
}
