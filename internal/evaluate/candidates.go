package evaluate

import (
	"math/rand"

	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/searchspace"
)

// RandomCandidates draws n pipelines from the search space. Each pipeline is a
// clusterer, preceded half of the time by one preprocessing or selection step.
func RandomCandidates(rng *rand.Rand, n int) [][]estimator.Step {
	clusterers := searchspace.NamesOf(searchspace.KindClusterer)
	preprocessors := append(
		searchspace.NamesOf(searchspace.KindTransformer),
		searchspace.NamesOf(searchspace.KindSelector)...,
	)

	candidates := make([][]estimator.Step, n)
	for i := range candidates {
		var steps []estimator.Step
		if rng.Intn(2) == 0 {
			steps = append(steps, sampleStep(rng, preprocessors[rng.Intn(len(preprocessors))]))
		}
		steps = append(steps, sampleStep(rng, clusterers[rng.Intn(len(clusterers))]))
		candidates[i] = steps
	}
	return candidates
}

// FirstCandidates returns one single-step pipeline per clusterer using the
// first candidate of every parameter
func FirstCandidates() [][]estimator.Step {
	clusterers := searchspace.NamesOf(searchspace.KindClusterer)
	candidates := make([][]estimator.Step, len(clusterers))
	for i, id := range clusterers {
		domain, _ := searchspace.Lookup(id)
		candidates[i] = []estimator.Step{{Algorithm: id, Params: domain.First()}}
	}
	return candidates
}

func sampleStep(rng *rand.Rand, id string) estimator.Step {
	domain, _ := searchspace.Lookup(id)
	return estimator.Step{Algorithm: id, Params: domain.Sample(rng)}
}
