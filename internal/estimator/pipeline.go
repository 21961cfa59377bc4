package estimator

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Step is one stage of a pipeline: an algorithm identifier and its parameters
type Step struct {
	Algorithm string
	Params    Params
}

// String renders the step as Algorithm(k=v,...)
func (s Step) String() string {
	return fmt.Sprintf("%s(%s)", s.Algorithm, s.Params.Key())
}

// Pipeline chains zero or more transformers into a final clusterer
type Pipeline struct {
	steps        []Step
	transformers []Transformer
	clusterer    Clusterer
}

// NewPipeline builds every step with default configuration
func NewPipeline(steps []Step) (*Pipeline, error) {
	return NewPipelineWithConfig(steps, DefaultConfig())
}

// NewPipelineWithConfig builds every step and checks that only the last one is a clusterer
func NewPipelineWithConfig(steps []Step, cfg Config) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidPipeline)
	}

	p := &Pipeline{steps: make([]Step, len(steps))}
	copy(p.steps, steps)

	for i, step := range steps {
		est, err := NewWithConfig(step.Algorithm, step.Params, cfg)
		if err != nil {
			return nil, err
		}
		last := i == len(steps)-1
		if last {
			c, ok := est.(Clusterer)
			if !ok {
				return nil, fmt.Errorf("%w: final step %s is not a clusterer", ErrInvalidPipeline, step.Algorithm)
			}
			p.clusterer = c
			continue
		}
		t, ok := est.(Transformer)
		if !ok {
			return nil, fmt.Errorf("%w: step %d (%s) is not a transformer", ErrInvalidPipeline, i, step.Algorithm)
		}
		p.transformers = append(p.transformers, t)
	}
	return p, nil
}

// Name returns the step identifiers joined by arrows
func (p *Pipeline) Name() string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Algorithm
	}
	return strings.Join(names, " -> ")
}

// Key returns a canonical description of every step and its parameters
func (p *Pipeline) Key() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, "|")
}

// Steps returns a copy of the pipeline steps
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// FitPredict fits every transformer in order and clusters the final output
func (p *Pipeline) FitPredict(X mat.Matrix) ([]int, error) {
	current := X
	for _, t := range p.transformers {
		out, err := t.FitTransform(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		current = out
	}
	labels, err := p.clusterer.FitPredict(current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.clusterer.Name(), err)
	}
	return labels, nil
}

// Predict passes X through the fitted transformers and the final predictor
func (p *Pipeline) Predict(X mat.Matrix) ([]int, error) {
	pred, ok := p.clusterer.(Predictor)
	if !ok {
		return nil, fmt.Errorf("%s cannot predict new rows: %w", p.clusterer.Name(), ErrNotFitted)
	}
	current := X
	for _, t := range p.transformers {
		out, err := t.Transform(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		current = out
	}
	return pred.Predict(current)
}

// Fitted reports whether the final step can label new rows
func (p *Pipeline) Fitted() bool {
	pred, ok := p.clusterer.(Predictor)
	return ok && pred.Fitted()
}
