package svm

import (
	"fmt"

	"github.com/oarkflow/newsml/artifact"
)

// artifactV1 is the on-disk classifier layout the inference service loads.
type artifactV1 struct {
	Version  int      `json:"version"`
	Strategy Strategy `json:"strategy"`
	Classes  []string `json:"classes"`
	Dim      int      `json:"dim"`
	Machines []binary `json:"machines"`
	Pairs    [][2]int `json:"pairs,omitempty"`
}

// Save writes the fitted classifier. Fatal on failure: the run must not
// be reported as having produced an artifact.
func (l *Linear) Save(path string) error {
	if len(l.classes) == 0 {
		return fmt.Errorf("svm: save before fit")
	}
	return artifact.WriteJSON(path, artifactV1{
		Version:  1,
		Strategy: l.cfg.Strategy,
		Classes:  l.classes,
		Dim:      l.dim,
		Machines: l.machines,
		Pairs:    l.pairs,
	})
}

// Load restores a classifier saved by Save. The result predicts; it is
// not refittable with the original hyperparameters.
func Load(path string) (*Linear, error) {
	var a artifactV1
	if err := artifact.ReadJSON(path, &a); err != nil {
		return nil, err
	}
	if a.Version != 1 {
		return nil, fmt.Errorf("svm: unsupported artifact version %d", a.Version)
	}
	l := NewLinear(Config{Strategy: a.Strategy})
	l.classes = a.Classes
	l.dim = a.Dim
	l.machines = a.Machines
	l.pairs = a.Pairs
	return l, nil
}
