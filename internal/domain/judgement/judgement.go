// Package judgement grades the relevance of a top search result.
package judgement

// Label is a coarse relevance grade.
type Label string

// Grades produced by Classify. Error marks a query whose search failed.
const (
	Good  Label = "good"
	Fair  Label = "fair"
	Bad   Label = "bad"
	Error Label = "error"
)

// Score thresholds.
const (
	GoodAbove = 0.7
	FairFrom  = 0.5
)

// Classify grades a top-1 score: above 0.7 is good, [0.5, 0.7] is fair,
// everything else (including an empty result scored as 0) is bad.
func Classify(score float64) Label {
	switch {
	case score > GoodAbove:
		return Good
	case score >= FairFrom:
		return Fair
	default:
		return Bad
	}
}

// IsRelevant reports whether a single hit counts toward precision.
func IsRelevant(score float64) bool {
	return score > GoodAbove
}

// Labels lists every grade, in report order.
func Labels() []Label {
	return []Label{Good, Fair, Bad, Error}
}
