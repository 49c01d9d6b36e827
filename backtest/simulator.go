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

// Package backtest simulates one rebalancing portfolio per factor bucket.
// Positions opened on a day are held for the holding period, so the live book
// on any date is the sum of the still-open slices from the previous
// holding-period rebalance days; the engine expresses that as a trailing
// rolling sum over a per-day target weight matrix.
package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/factorlab/ntiles/dataframe"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultWeightCap limits any single asset's daily weight slice; thin
	// buckets would otherwise concentrate the whole book in a few names
	DefaultWeightCap = 0.05

	// UniverseColumn is the output column holding the equal-weight
	// everything portfolio
	UniverseColumn = "universe"
)

var (
	ErrHoldingPeriod       = errors.New("one day holding period is not supported; holding period must be at least 2")
	ErrBucketCount         = errors.New("bucket count must be at least 1")
	ErrInsufficientHistory = errors.New("aligned matrices have fewer rows than the holding period")
)

// NtileColumn is the output column name for bucket k
func NtileColumn(k int) string {
	return fmt.Sprintf("Ntile: %d", k)
}

// SpreadColumn is the output column name for the long-short spread between
// buckets a and b
func SpreadColumn(a, b int) string {
	return fmt.Sprintf("%d vs %d", a, b)
}

// Config controls a simulation run
type Config struct {
	Ntiles          int
	HoldingPeriod   int
	LongShort       bool
	MarketNeutral   bool
	IncludeUniverse bool

	// WeightCap overrides DefaultWeightCap when > 0
	WeightCap float64
}

func (cfg Config) weightCap() float64 {
	if cfg.WeightCap > 0 {
		return cfg.WeightCap
	}
	return DefaultWeightCap
}

// Validate checks the configuration before any computation starts
func (cfg Config) Validate() error {
	if cfg.Ntiles < 1 {
		return ErrBucketCount
	}
	if cfg.HoldingPeriod < 2 {
		return ErrHoldingPeriod
	}
	return nil
}

// Result holds the realized bucket return series plus the weight and
// weighted-return matrices that produced them. DailyWeights and
// WeightedReturns are keyed by output column name ("Ntile: k", "universe");
// their rows start at the first date a full cohort stack exists.
type Result struct {
	Returns         *dataframe.DataFrame
	DailyWeights    dataframe.DataFrameMap
	WeightedReturns dataframe.DataFrameMap
}

// Run simulates every bucket portfolio over the aligned bucket and return
// matrices. Both matrices must share an identical shape and ordering (the
// aligner's output contract). The returned series carry a synthetic 0.0
// return on their first row, the pre-investment day. Inputs are treated as
// read-only.
func Run(ntileMatrix, returns *dataframe.DataFrame, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if ntileMatrix.Len() != returns.Len() || ntileMatrix.ColCount() != returns.ColCount() {
		return nil, dataframe.ErrShapeMismatch
	}

	holding := cfg.HoldingPeriod
	if ntileMatrix.Len() < holding {
		return nil, ErrInsufficientHistory
	}

	res := &Result{
		DailyWeights:    dataframe.DataFrameMap{},
		WeightedReturns: dataframe.DataFrameMap{},
	}

	out := &dataframe.DataFrame{
		Dates:    ntileMatrix.Dates[holding-2:],
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	for tile := 1; tile <= cfg.Ntiles; tile++ {
		series, weights, weighted := simulateBucket(ntileMatrix, returns, tile, holding, cfg.weightCap())
		colName := NtileColumn(tile)
		out.Insert(colName, series)
		res.DailyWeights[colName] = weights
		res.WeightedReturns[colName] = weighted
	}

	// the universe book holds every asset with a finite bucket that day and
	// rebalances fully each day; it is computed on the same truncated window
	// so its series lines up with the bucket series row for row
	uniNtile := universeMatrix(ntileMatrix).Slice(holding-1, ntileMatrix.Len())
	uniReturns := returns.Slice(holding-1, returns.Len())
	uniSeries, uniWeights, uniWeighted := simulateBucket(uniNtile, uniReturns, 1, 1, cfg.weightCap())
	res.DailyWeights[UniverseColumn] = uniWeights
	res.WeightedReturns[UniverseColumn] = uniWeighted

	if cfg.MarketNeutral {
		for colIdx := range out.ColNames {
			for rowIdx := range out.Vals[colIdx] {
				out.Vals[colIdx][rowIdx] -= uniSeries[rowIdx]
			}
		}
	}

	if cfg.IncludeUniverse {
		out.Insert(UniverseColumn, uniSeries)
	}

	if cfg.LongShort {
		out.Insert(SpreadColumn(1, cfg.Ntiles), spread(out.Col(NtileColumn(1)), out.Col(NtileColumn(cfg.Ntiles))))
		if cfg.Ntiles > 3 {
			out.Insert(SpreadColumn(2, cfg.Ntiles-1), spread(out.Col(NtileColumn(2)), out.Col(NtileColumn(cfg.Ntiles-1))))
		}
	}

	res.Returns = out
	return res, nil
}

// simulateBucket computes the realized return series for one bucket along
// with its daily weight and weighted return matrices. The series is one row
// longer than the matrices: a synthetic 0.0 is prepended for the day before
// the first full cohort stack.
func simulateBucket(ntileMatrix, returns *dataframe.DataFrame, tile, holding int, weightCap float64) ([]float64, *dataframe.DataFrame, *dataframe.DataFrame) {
	rows := ntileMatrix.Len()
	target := float64(tile)

	// per-day target weight: an equal share of the day's rebalance slice
	weightPerDay := make([]float64, rows)
	capped := false
	for rowIdx := 0; rowIdx < rows; rowIdx++ {
		count := 0
		for colIdx := range ntileMatrix.Vals {
			if ntileMatrix.Vals[colIdx][rowIdx] == target {
				count++
			}
		}
		if count == 0 {
			// an empty bucket contributes nothing that day
			continue
		}
		w := 1 / float64(count) / float64(holding)
		if w > weightCap {
			w = weightCap
			capped = true
		}
		weightPerDay[rowIdx] = w
	}

	if capped {
		log.Warn().Int("Ntile", tile).Float64("WeightCap", weightCap).
			Msg("an asset's daily weight exceeds the cap; limiting weight and under-deploying capital")
	}

	raw := &dataframe.DataFrame{
		Dates:    ntileMatrix.Dates,
		ColNames: ntileMatrix.ColNames,
		Vals:     make([][]float64, len(ntileMatrix.Vals)),
	}
	for colIdx := range ntileMatrix.Vals {
		raw.Vals[colIdx] = make([]float64, rows)
		for rowIdx := 0; rowIdx < rows; rowIdx++ {
			if ntileMatrix.Vals[colIdx][rowIdx] == target {
				raw.Vals[colIdx][rowIdx] = weightPerDay[rowIdx]
			}
		}
	}

	weights := raw.RollingSum(holding)

	weighted := &dataframe.DataFrame{
		Dates:    weights.Dates,
		ColNames: weights.ColNames,
		Vals:     make([][]float64, len(weights.Vals)),
	}
	for colIdx := range weights.Vals {
		weighted.Vals[colIdx] = make([]float64, weights.Len())
		for rowIdx := range weighted.Vals[colIdx] {
			w := weights.Vals[colIdx][rowIdx]
			if w == 0 {
				// keeps NaN return cells in never-held assets out of the sums
				continue
			}
			weighted.Vals[colIdx][rowIdx] = w * returns.Vals[colIdx][rowIdx+holding-1]
		}
	}

	series := make([]float64, weighted.Len()+1)
	for rowIdx, total := range weighted.SumRows() {
		series[rowIdx+1] = total
	}

	return series, weights, weighted
}

// universeMatrix maps every finite bucket assignment to 1 and everything else
// to NaN
func universeMatrix(ntileMatrix *dataframe.DataFrame) *dataframe.DataFrame {
	out := ntileMatrix.Copy()
	for colIdx := range out.Vals {
		for rowIdx := range out.Vals[colIdx] {
			if math.IsNaN(out.Vals[colIdx][rowIdx]) || math.IsInf(out.Vals[colIdx][rowIdx], 0) {
				out.Vals[colIdx][rowIdx] = math.NaN()
			} else {
				out.Vals[colIdx][rowIdx] = 1
			}
		}
	}
	return out
}

// spread is the mid-spread between two equally capitalized legs; each leg is
// independently fully weighted so the difference is halved
func spread(long, short []float64) []float64 {
	out := make([]float64, len(long))
	for idx := range long {
		out[idx] = (long[idx] - short[idx]) / 2
	}
	return out
}
