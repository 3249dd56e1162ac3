package model

// State is one named node of an HMM. Probability entries absent from the
// Emissions or Transitions maps are treated as probability 0.
type State struct {
	Name        string             `yaml:"name" json:"name"`
	Initial     float64            `yaml:"initial" json:"initial"`
	Emissions   map[string]float64 `yaml:"emissions" json:"emissions"`
	Transitions map[string]float64 `yaml:"transitions" json:"transitions"`
	Termination float64            `yaml:"termination" json:"termination"`
}

// Emission returns the probability of the state emitting the given symbol.
// Symbols missing from the table collapse to 0.
func (s *State) Emission(symbol string) float64 {
	return s.Emissions[symbol]
}

// Transition returns the probability of the state transitioning to the
// named destination. Missing destinations collapse to 0.
func (s *State) Transition(to string) float64 {
	return s.Transitions[to]
}
