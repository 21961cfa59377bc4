package searchspace

import (
	"math/rand"
	"sort"
)

// Candidates is an enumerable set of values a parameter may take
type Candidates interface {
	Len() int
	At(i int) any
}

// Range is the half-open integer interval [Start, Stop)
type Range struct {
	Start, Stop int
}

func (r Range) Len() int {
	if r.Stop <= r.Start {
		return 0
	}
	return r.Stop - r.Start
}

func (r Range) At(i int) any { return r.Start + i }

// Ints is a discrete list of integer candidates
type Ints []int

func (v Ints) Len() int { return len(v) }
func (v Ints) At(i int) any { return v[i] }

// Floats is a discrete list of float candidates
type Floats []float64

func (v Floats) Len() int { return len(v) }
func (v Floats) At(i int) any { return v[i] }

// Strings is a categorical list of candidates
type Strings []string

func (v Strings) Len() int { return len(v) }
func (v Strings) At(i int) any { return v[i] }

// Domain maps parameter names to their candidate sets. The zero Domain is an
// empty, valid domain.
type Domain struct {
	params map[string]Candidates
}

// NewDomain creates a domain from a parameter table
func NewDomain(params map[string]Candidates) Domain {
	d := Domain{params: make(map[string]Candidates, len(params))}
	for name, c := range params {
		d.params[name] = c
	}
	return d
}

// Params returns the parameter names in sorted order
func (d Domain) Params() []string {
	names := make([]string, 0, len(d.params))
	for name := range d.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidates returns the candidate set for a parameter
func (d Domain) Candidates(name string) (Candidates, bool) {
	c, ok := d.params[name]
	return c, ok
}

// Len returns the number of tunable parameters
func (d Domain) Len() int { return len(d.params) }

// Size returns the number of distinct parameter assignments
func (d Domain) Size() int {
	size := 1
	for _, c := range d.params {
		size *= c.Len()
	}
	return size
}

// Values enumerates every candidate of a parameter
func (d Domain) Values(name string) []any {
	c, ok := d.params[name]
	if !ok {
		return nil
	}
	values := make([]any, c.Len())
	for i := range values {
		values[i] = c.At(i)
	}
	return values
}

// First returns the assignment made of each parameter's first candidate
func (d Domain) First() map[string]any {
	out := make(map[string]any, len(d.params))
	for name, c := range d.params {
		if c.Len() > 0 {
			out[name] = c.At(0)
		}
	}
	return out
}

// Sample draws one candidate per parameter uniformly and independently
func (d Domain) Sample(rng *rand.Rand) map[string]any {
	out := make(map[string]any, len(d.params))
	// Iterate in sorted order so a seeded rng gives a stable assignment.
	for _, name := range d.Params() {
		c := d.params[name]
		if c.Len() == 0 {
			continue
		}
		out[name] = c.At(rng.Intn(c.Len()))
	}
	return out
}
