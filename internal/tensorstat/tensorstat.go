// Package tensorstat summarizes parameter values for inspection.
package tensorstat

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/qrv0/pthbin/internal/checkpoint"
)

type Summary struct {
	Name  string
	Shape []int
	DType string
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
	// NonFinite counts NaN and ±Inf values, which are left out of the stats.
	NonFinite int
}

func Summarize(p checkpoint.Param) Summary {
	s := Summary{Name: p.Name, Shape: p.Shape, DType: p.DType, Count: len(p.Data)}
	xs := make([]float64, 0, len(p.Data))
	for _, v := range p.Data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s.NonFinite++
			continue
		}
		xs = append(xs, f)
	}
	if len(xs) == 0 {
		s.Min, s.Max, s.Mean, s.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	return s
}

func SummarizeAll(params []checkpoint.Param) []Summary {
	out := make([]Summary, len(params))
	for i, p := range params { out[i] = Summarize(p) }
	return out
}
