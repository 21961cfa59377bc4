package scoring

import (
	"fmt"
	"sort"
)

// Names of the scorers that override or extend the catalog
const (
	BalancedAccuracyName      = "balanced_accuracy"
	SilhouetteScoreName       = "silhouette_score"
	DaviesBouldinScoreName    = "davies_bouldin_score"
	CalinskiHarabaszScoreName = "calinski_harabasz_score"
	SilhouetteSamplesName     = "silhouette_samples"
)

// scorers is assembled once at package initialization and only read afterwards
var scorers = buildScorers()

func buildScorers() map[string]Scorer {
	out := make(map[string]Scorer, len(catalog)+5)
	for name, metric := range catalog {
		out[name] = MakeScorer(name, metric, true)
	}

	// Later entries replace catalog entries of the same name
	out[BalancedAccuracyName] = MakeScorer(BalancedAccuracyName, func(yTrue, yPred []int) (float64, error) {
		return BalancedAccuracy(yTrue, yPred)
	}, true)

	out[SilhouetteScoreName] = NewUnsupervisedScorer(SilhouetteScoreName, SilhouetteScore, true)
	out[DaviesBouldinScoreName] = NewUnsupervisedScorer(DaviesBouldinScoreName, DaviesBouldinScore, false)
	out[CalinskiHarabaszScoreName] = NewUnsupervisedScorer(CalinskiHarabaszScoreName, CalinskiHarabaszScore, true)
	// Per-sample silhouettes are reduced by their mean to give one fitness value
	out[SilhouetteSamplesName] = NewUnsupervisedScorer(SilhouetteSamplesName, SilhouetteScore, true)

	return out
}

// Get returns the scorer registered under name
func Get(name string) (Scorer, bool) {
	s, ok := scorers[name]
	return s, ok
}

// Lookup returns the scorer registered under name or ErrUnknownScorer
func Lookup(name string) (Scorer, error) {
	s, ok := scorers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
	return s, nil
}

// MustGet is like Get but panics on unknown names
func MustGet(name string) Scorer {
	s, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns every registered scorer name in sorted order
func Names() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsUnsupervised reports whether the named scorer needs no ground truth
func IsUnsupervised(name string) bool {
	_, ok := scorers[name].(*UnsupervisedScorer)
	return ok
}
