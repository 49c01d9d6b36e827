// Copyright 2022-2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"math"
	"sort"

	"github.com/factorlab/ntiles/dataframe"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is used to annualize daily statistics
const TradingDaysPerYear = 252

// ForwardReturns compounds simple returns holdingPeriod rows forward and
// shifts the result back so each date's value is the return realized by a
// position opened at that date's close and held for holdingPeriod rows
func ForwardReturns(returns *dataframe.DataFrame, holdingPeriod int) *dataframe.DataFrame {
	return returns.AddScalar(1).CumProd().PctChange(holdingPeriod).Shift(-holdingPeriod)
}

// CumulativeReturns compounds simple returns down each column with a starting
// value of 1
func CumulativeReturns(simpleReturns *dataframe.DataFrame) *dataframe.DataFrame {
	return simpleReturns.AddScalar(1).CumProd()
}

// CAGR calculates the geometric average annual return for each column of a
// cumulative return frame, in percent. Assumes daily rows.
func CAGR(cumReturns *dataframe.DataFrame) []float64 {
	out := make([]float64, cumReturns.ColCount())
	if cumReturns.Len() == 0 {
		return out
	}

	years := float64(cumReturns.Len()) / TradingDaysPerYear
	lastRow := cumReturns.Len() - 1
	for colIdx := range cumReturns.Vals {
		out[colIdx] = (math.Pow(cumReturns.Vals[colIdx][lastRow], 1/years) - 1) * 100
	}
	return out
}

// AnnualVolatility calculates the annualized standard deviation of each
// column of a simple return frame, in percent
func AnnualVolatility(simpleReturns *dataframe.DataFrame) []float64 {
	out := make([]float64, simpleReturns.ColCount())
	for colIdx := range simpleReturns.Vals {
		out[colIdx] = stat.StdDev(finite(simpleReturns.Vals[colIdx]), nil) * math.Sqrt(TradingDaysPerYear) * 100
	}
	return out
}

// MaxDrawdown calculates the largest peak-to-trough loss for each column of a
// simple return frame, in percent (a loss is negative)
func MaxDrawdown(simpleReturns *dataframe.DataFrame) []float64 {
	out := make([]float64, simpleReturns.ColCount())
	for colIdx := range simpleReturns.Vals {
		wealth := 1.0
		peak := 1.0
		maxDD := 0.0
		for _, r := range simpleReturns.Vals[colIdx] {
			if math.IsNaN(r) {
				continue
			}
			wealth *= 1 + r
			if wealth > peak {
				peak = wealth
			}
			dd := wealth/peak - 1
			if dd < maxDD {
				maxDD = dd
			}
		}
		out[colIdx] = maxDD * 100
	}
	return out
}

// PercentPeriodsUp calculates the fraction of periods with a positive return
// for each column of a simple return frame, in percent
func PercentPeriodsUp(simpleReturns *dataframe.DataFrame) []float64 {
	out := make([]float64, simpleReturns.ColCount())
	for colIdx := range simpleReturns.Vals {
		up := 0
		total := 0
		for _, r := range simpleReturns.Vals[colIdx] {
			if math.IsNaN(r) {
				continue
			}
			total++
			if r > 0 {
				up++
			}
		}
		if total > 0 {
			out[colIdx] = float64(up) / float64(total) * 100
		}
	}
	return out
}

// Mean returns the mean of the finite values in xs; NaN when none exist
func Mean(xs []float64) float64 {
	vals := finite(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Median returns the median of the finite values in xs; NaN when none exist
func Median(xs []float64) float64 {
	vals := finite(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil)
}

// Std returns the sample standard deviation of the finite values in xs; NaN
// when fewer than two exist
func Std(xs []float64) float64 {
	vals := finite(xs)
	if len(vals) < 2 {
		return math.NaN()
	}
	return stat.StdDev(vals, nil)
}

// Skew returns the sample skewness of the finite values in xs; NaN when fewer
// than two exist
func Skew(xs []float64) float64 {
	vals := finite(xs)
	if len(vals) < 2 {
		return math.NaN()
	}
	return stat.Skew(vals, nil)
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
