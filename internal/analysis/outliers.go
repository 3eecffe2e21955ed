package analysis

import (
	"math"
	"sort"

	. "vitals/internal/models"
)

// Method selects the statistical test used to flag anomalous points.
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// ZScoreThreshold is the number of population standard deviations a point
// may sit from the mean before it is flagged.
const ZScoreThreshold = 2.0

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodIQR, MethodZScore:
		return Method(s), nil
	}
	return "", ErrInvalidMethod
}

// Classify returns the X values of the points considered anomalous under
// the given method. Input is not mutated; identical input yields identical
// output. Fewer than two points, or points with no spread, flag nothing.
func Classify(points []DataPoint, method Method) []float64 {
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Y
	}

	flaggedX := []float64{}
	for _, i := range FlaggedIndices(ys, method) {
		flaggedX = append(flaggedX, points[i].X)
	}
	return flaggedX
}

// FlaggedIndices returns the positions of anomalous values in ys,
// ascending. Callers that track identity alongside the series (sample ids,
// timestamps) map the indices back themselves.
func FlaggedIndices(ys []float64, method Method) []int {
	if len(ys) < 2 {
		return []int{}
	}

	switch method {
	case MethodZScore:
		return zScoreIndices(ys, ZScoreThreshold)
	default:
		return iqrFenceIndices(ys)
	}
}

// iqrFenceIndices flags values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// Zero IQR means no spread to measure against, so nothing is flagged.
func iqrFenceIndices(ys []float64) []int {
	q1 := quantile(ys, 0.25)
	q3 := quantile(ys, 0.75)
	iqr := q3 - q1
	if iqr == 0 {
		return []int{}
	}

	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	flagged := []int{}
	for i, y := range ys {
		if y < lower || y > upper {
			flagged = append(flagged, i)
		}
	}
	return flagged
}

// zScoreIndices flags values more than threshold population standard
// deviations from the mean. Zero deviation flags nothing.
func zScoreIndices(ys []float64, threshold float64) []int {
	var sum float64
	for _, y := range ys {
		sum += y
	}
	mean := sum / float64(len(ys))

	var sumSquares float64
	for _, y := range ys {
		d := y - mean
		sumSquares += d * d
	}
	std := math.Sqrt(sumSquares / float64(len(ys)))
	if std == 0 {
		return []int{}
	}

	flagged := []int{}
	for i, y := range ys {
		if math.Abs(y-mean) > threshold*std {
			flagged = append(flagged, i)
		}
	}
	return flagged
}

// quantile computes the q-th quantile of ys with linear interpolation
// between closest ranks.
func quantile(ys []float64, q float64) float64 {
	sorted := make([]float64, len(ys))
	copy(sorted, ys)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}

	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
