package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LabelMetric compares true labels with predicted labels
type LabelMetric func(yTrue, yPred []int) (float64, error)

// Accuracy is the fraction of exact matches
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, ErrLengthMismatch
	}
	if len(yTrue) == 0 {
		return 0, nil
	}
	var correct int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// classStats holds one-vs-rest counts for a single class
type classStats struct {
	tp, fp, fn int
	support    int
}

// perClass counts one-vs-rest outcomes for every label in either sequence,
// in order of first appearance
func perClass(yTrue, yPred []int) ([]classStats, error) {
	if len(yTrue) != len(yPred) {
		return nil, ErrLengthMismatch
	}
	index := make(map[int]int)
	var stats []classStats
	lookup := func(l int) int {
		i, ok := index[l]
		if !ok {
			i = len(stats)
			index[l] = i
			stats = append(stats, classStats{})
		}
		return i
	}
	for i := range yTrue {
		t, p := lookup(yTrue[i]), lookup(yPred[i])
		stats[t].support++
		if t == p {
			stats[t].tp++
		} else {
			stats[t].fn++
			stats[p].fp++
		}
	}
	return stats, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (s classStats) precision() float64 { return ratio(s.tp, s.tp+s.fp) }
func (s classStats) recall() float64    { return ratio(s.tp, s.tp+s.fn) }
func (s classStats) jaccard() float64   { return ratio(s.tp, s.tp+s.fp+s.fn) }

func (s classStats) f1() float64 {
	p, r := s.precision(), s.recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// averaged applies per to every class and reduces with macro or support weighting
func averaged(per func(classStats) float64, weighted bool) LabelMetric {
	return func(yTrue, yPred []int) (float64, error) {
		stats, err := perClass(yTrue, yPred)
		if err != nil || len(stats) == 0 {
			return 0, err
		}
		var total, weights float64
		for _, s := range stats {
			w := 1.0
			if weighted {
				w = float64(s.support)
			}
			total += w * per(s)
			weights += w
		}
		if weights == 0 {
			return 0, nil
		}
		return total / weights, nil
	}
}

// MeanRecall is the catalog definition of balanced accuracy: the unweighted
// mean recall over classes that have true instances
func MeanRecall(yTrue, yPred []int) (float64, error) {
	stats, err := perClass(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var total float64
	var classes int
	for _, s := range stats {
		if s.support == 0 {
			continue
		}
		total += s.recall()
		classes++
	}
	if classes == 0 {
		return 0, nil
	}
	return total / float64(classes), nil
}

// F1Micro pools counts over classes; for single-label data it equals accuracy
func F1Micro(yTrue, yPred []int) (float64, error) {
	stats, err := perClass(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var pooled classStats
	for _, s := range stats {
		pooled.tp += s.tp
		pooled.fp += s.fp
		pooled.fn += s.fn
	}
	return pooled.f1(), nil
}

// contingency is a sparse table of co-occurrence counts between two labelings
type contingency struct {
	n     int
	cells map[[2]int]int
	rows  map[int]int // true label totals
	cols  map[int]int // predicted label totals
}

func newContingency(yTrue, yPred []int) (*contingency, error) {
	if len(yTrue) != len(yPred) {
		return nil, ErrLengthMismatch
	}
	c := &contingency{
		n:     len(yTrue),
		cells: make(map[[2]int]int),
		rows:  make(map[int]int),
		cols:  make(map[int]int),
	}
	for i := range yTrue {
		c.cells[[2]int{yTrue[i], yPred[i]}]++
		c.rows[yTrue[i]]++
		c.cols[yPred[i]]++
	}
	return c, nil
}

func comb2(n int) float64 {
	return float64(n) * float64(n-1) / 2
}

// pairCounts returns the pair sums of cells, rows and columns
func (c *contingency) pairCounts() (cells, rows, cols float64) {
	for _, v := range c.cells {
		cells += comb2(v)
	}
	for _, v := range c.rows {
		rows += comb2(v)
	}
	for _, v := range c.cols {
		cols += comb2(v)
	}
	return cells, rows, cols
}

func entropyOf(counts map[int]int, n int) float64 {
	p := make([]float64, 0, len(counts))
	for _, v := range counts {
		p = append(p, float64(v)/float64(n))
	}
	return stat.Entropy(p)
}

func (c *contingency) mutualInfo() float64 {
	var mi float64
	n := float64(c.n)
	for key, v := range c.cells {
		if v == 0 {
			continue
		}
		nij := float64(v)
		mi += nij / n * math.Log(n*nij/(float64(c.rows[key[0]])*float64(c.cols[key[1]])))
	}
	return math.Max(mi, 0)
}

// RandScore is the fraction of sample pairs on which both labelings agree
func RandScore(yTrue, yPred []int) (float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	total := comb2(c.n)
	if total == 0 {
		return 1, nil
	}
	cells, rows, cols := c.pairCounts()
	return (total + 2*cells - rows - cols) / total, nil
}

// AdjustedRandScore is the Rand index corrected for chance
func AdjustedRandScore(yTrue, yPred []int) (float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	total := comb2(c.n)
	if total == 0 {
		return 1, nil
	}
	cells, rows, cols := c.pairCounts()
	expected := rows * cols / total
	maximum := (rows + cols) / 2
	if maximum == expected {
		return 1, nil
	}
	return (cells - expected) / (maximum - expected), nil
}

// MutualInfoScore is the mutual information between two labelings in nats
func MutualInfoScore(yTrue, yPred []int) (float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.n == 0 {
		return 0, nil
	}
	return c.mutualInfo(), nil
}

// NormalizedMutualInfoScore divides mutual information by the arithmetic mean
// of both entropies
func NormalizedMutualInfoScore(yTrue, yPred []int) (float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if c.n == 0 || (len(c.rows) == 1 && len(c.cols) == 1) {
		return 1, nil
	}
	mi := c.mutualInfo()
	if mi == 0 {
		return 0, nil
	}
	norm := (entropyOf(c.rows, c.n) + entropyOf(c.cols, c.n)) / 2
	return mi / math.Max(norm, math.SmallestNonzeroFloat64), nil
}

// homogeneityCompleteness returns homogeneity, completeness and V-measure
func homogeneityCompleteness(yTrue, yPred []int) (float64, float64, float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, 0, 0, err
	}
	if c.n == 0 {
		return 1, 1, 1, nil
	}
	hTrue := entropyOf(c.rows, c.n)
	hPred := entropyOf(c.cols, c.n)
	mi := c.mutualInfo()

	homogeneity, completeness := 1.0, 1.0
	if hTrue > 0 {
		homogeneity = mi / hTrue
	}
	if hPred > 0 {
		completeness = mi / hPred
	}
	var vMeasure float64
	if homogeneity+completeness > 0 {
		vMeasure = 2 * homogeneity * completeness / (homogeneity + completeness)
	}
	return homogeneity, completeness, vMeasure, nil
}

// HomogeneityScore is 1 when every predicted cluster holds a single true class
func HomogeneityScore(yTrue, yPred []int) (float64, error) {
	h, _, _, err := homogeneityCompleteness(yTrue, yPred)
	return h, err
}

// CompletenessScore is 1 when every true class falls in a single predicted cluster
func CompletenessScore(yTrue, yPred []int) (float64, error) {
	_, c, _, err := homogeneityCompleteness(yTrue, yPred)
	return c, err
}

// VMeasureScore is the harmonic mean of homogeneity and completeness
func VMeasureScore(yTrue, yPred []int) (float64, error) {
	_, _, v, err := homogeneityCompleteness(yTrue, yPred)
	return v, err
}

// FowlkesMallowsScore is the geometric mean of pairwise precision and recall
func FowlkesMallowsScore(yTrue, yPred []int) (float64, error) {
	c, err := newContingency(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var tk, pk, qk float64
	for _, v := range c.cells {
		tk += float64(v) * float64(v)
	}
	for _, v := range c.rows {
		pk += float64(v) * float64(v)
	}
	for _, v := range c.cols {
		qk += float64(v) * float64(v)
	}
	n := float64(c.n)
	tk, pk, qk = tk-n, pk-n, qk-n
	if tk == 0 {
		return 0, nil
	}
	return tk / math.Sqrt(pk*qk), nil
}

// catalog lists the built-in supervised scorers by name. Every entry is
// greater-is-better.
var catalog = map[string]LabelMetric{
	"accuracy":                     Accuracy,
	"balanced_accuracy":            MeanRecall,
	"f1_macro":                     averaged(classStats.f1, false),
	"f1_micro":                     F1Micro,
	"f1_weighted":                  averaged(classStats.f1, true),
	"precision_macro":              averaged(classStats.precision, false),
	"recall_macro":                 averaged(classStats.recall, false),
	"jaccard_macro":                averaged(classStats.jaccard, false),
	"adjusted_rand_score":          AdjustedRandScore,
	"rand_score":                   RandScore,
	"mutual_info_score":            MutualInfoScore,
	"normalized_mutual_info_score": NormalizedMutualInfoScore,
	"homogeneity_score":            HomogeneityScore,
	"completeness_score":           CompletenessScore,
	"v_measure_score":              VMeasureScore,
	"fowlkes_mallows_score":        FowlkesMallowsScore,
}
