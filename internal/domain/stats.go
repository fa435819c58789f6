package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SignificanceLevel is the two-tailed alpha used for every comparison.
const SignificanceLevel = 0.05

// EventCounts holds the tallies a variant's rates are derived from.
type EventCounts struct {
	Impressions int64
	Focuses     int64
	Errors      int64
	Submissions int64
	Conversions int64
}

// Add folds n events of type t into the tallies. Types that feed no rate are ignored.
func (c *EventCounts) Add(t EventType, n int64) {
	switch t {
	case EventImpression:
		c.Impressions += n
	case EventFocus:
		c.Focuses += n
	case EventValidationError:
		c.Errors += n
	case EventFormSubmit:
		c.Submissions += n
	case EventFormSuccess:
		c.Conversions += n
	}
}

// VariantStats holds per-variant tallies and percentage rates.
type VariantStats struct {
	VariantID     string
	VariantName   string
	IsControl     bool
	TrafficWeight int
	EventCounts

	EngagementRate float64
	ErrorRate      float64
	ConversionRate float64
}

// NewVariantStats derives rates from counts.
// All divisions are zero-safe: returns 0 when the divisor is zero.
func NewVariantStats(v Variant, c EventCounts) VariantStats {
	return VariantStats{
		VariantID:      v.ID,
		VariantName:    v.Name,
		IsControl:      v.IsControl,
		TrafficWeight:  v.TrafficWeight,
		EventCounts:    c,
		EngagementRate: percent(c.Focuses, c.Impressions),
		ErrorRate:      percent(c.Errors, c.Focuses),
		ConversionRate: percent(c.Conversions, c.Impressions),
	}
}

func percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// Comparison is the result of testing one treatment against the control.
type Comparison struct {
	ControlID     string
	ControlName   string
	TreatmentID   string
	TreatmentName string

	ZScore      float64
	PValue      float64
	Significant bool

	// Improvement is the relative lift of the treatment's conversion rate in
	// percent. Nil when the control converted nothing.
	Improvement            *float64
	ControlZeroConversions bool
}

// Compare runs a two-proportion z-test of treatment against control.
func Compare(control, treatment VariantStats) Comparison {
	cmp := Comparison{
		ControlID:     control.VariantID,
		ControlName:   control.VariantName,
		TreatmentID:   treatment.VariantID,
		TreatmentName: treatment.VariantName,
		PValue:        1,
	}

	if control.Impressions == 0 || treatment.Impressions == 0 {
		return cmp
	}

	p1 := float64(control.Conversions) / float64(control.Impressions)
	p2 := float64(treatment.Conversions) / float64(treatment.Impressions)

	if p1 == 0 {
		cmp.ControlZeroConversions = true
	} else {
		lift := (p2 - p1) / p1 * 100
		cmp.Improvement = &lift
	}

	z, p := TwoProportionZTest(control.Conversions, control.Impressions, treatment.Conversions, treatment.Impressions)
	cmp.ZScore = z
	cmp.PValue = p
	cmp.Significant = p < SignificanceLevel
	return cmp
}

// TwoProportionZTest returns the pooled z statistic of (x2/n2 - x1/n1) and its
// two-tailed p-value. A zero sample or zero pooled variance yields (0, 1).
func TwoProportionZTest(x1, n1, x2, n2 int64) (z, pValue float64) {
	if n1 <= 0 || n2 <= 0 {
		return 0, 1
	}

	p1 := float64(x1) / float64(n1)
	p2 := float64(x2) / float64(n2)
	pooled := float64(x1+x2) / float64(n1+n2)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 || math.IsNaN(se) {
		return 0, 1
	}

	z = (p2 - p1) / se
	pValue = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if pValue > 1 {
		pValue = 1
	}
	return z, pValue
}

// TestStatistics is the full statistics report for one test.
type TestStatistics struct {
	Test        Test
	Variants    []VariantStats
	Comparisons []Comparison
}

// BuildStatistics computes per-variant stats in set order and compares each
// treatment with the control.
func BuildStatistics(test Test, set *VariantSet, counts map[string]EventCounts) *TestStatistics {
	all := set.All()
	stats := &TestStatistics{
		Test:     test,
		Variants: make([]VariantStats, 0, len(all)),
	}

	byID := make(map[string]VariantStats, len(all))
	for _, v := range all {
		vs := NewVariantStats(v, counts[v.ID])
		byID[v.ID] = vs
		stats.Variants = append(stats.Variants, vs)
	}

	control := byID[set.Control().ID]
	for _, t := range set.Treatments() {
		stats.Comparisons = append(stats.Comparisons, Compare(control, byID[t.ID]))
	}
	return stats
}
