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

package factor

import (
	"errors"
	"math"

	"github.com/factorlab/ntiles/dataframe"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoDateOverlap       = errors.New("no overlap between return matrix dates and factor dates")
	ErrPeriodicityMismatch = errors.New("factor dates and return matrix dates overlap but never coincide; periodicities are incompatible")
	ErrHoldingPeriodRange  = errors.New("holding period must be at least 1 for alignment")
)

// MinOverlapPeriods is the number of common dates between the factor and the
// return matrix below which results are statistically unreliable; smaller
// overlaps produce a warning, not an error.
var MinOverlapPeriods = 100

// LossSummary accounts for factor observations that cannot contribute to a
// backtest. Fractions are relative to TotalObservations.
type LossSummary struct {
	TotalObservations int
	NullFactor        int
	NoDateOverlap     int
	NoReturnData      int
}

// Lost returns the count of unusable observations
func (l LossSummary) Lost() int {
	return l.NullFactor + l.NoDateOverlap + l.NoReturnData
}

// LostFrac returns the fraction of observations lost to all causes
func (l LossSummary) LostFrac() float64 {
	if l.TotalObservations == 0 {
		return 0
	}
	return float64(l.Lost()) / float64(l.TotalObservations)
}

// NullFactorFrac returns the fraction of observations lost to null factor values
func (l LossSummary) NullFactorFrac() float64 {
	if l.TotalObservations == 0 {
		return 0
	}
	return float64(l.NullFactor) / float64(l.TotalObservations)
}

// AlignedInputs holds the matrices a simulation runs over. NtileMatrix,
// FactorMatrix and Returns share an identical date index and column order;
// downstream arithmetic depends on that equality.
type AlignedInputs struct {
	NtileMatrix   *dataframe.DataFrame
	FactorMatrix  *dataframe.DataFrame
	Returns       *dataframe.DataFrame
	Ranked        *Ranked
	HoldingPeriod int
	Loss          LossSummary
}

// Align joins a ranked factor with a dense return matrix. The return matrix
// is trimmed to the factor's date range and the bucket and factor-value
// matrices are reindexed onto the trimmed return matrix's exact row and
// column order, so all three outputs share one shape. Cells without an
// assignment become NaN. Observations that cannot contribute (no overlapping
// return date, or no return data inside the eventual holding window) are
// tallied in the loss summary rather than silently dropped.
func Align(ranked *Ranked, returns *dataframe.DataFrame, holdingPeriod int) (*AlignedInputs, error) {
	if holdingPeriod < 1 {
		return nil, ErrHoldingPeriodRange
	}

	if len(ranked.Obs) == 0 {
		return nil, ErrEmptyFactor
	}

	bucketMatrix := ranked.NtileMatrix()

	trimmed := returns.Trim(bucketMatrix.Start(), bucketMatrix.End())
	if trimmed.Len() == 0 {
		return nil, ErrNoDateOverlap
	}

	returnDates := make(map[int64]int, trimmed.Len())
	for idx, dt := range trimmed.Dates {
		returnDates[dt.Unix()] = idx
	}

	overlap := 0
	for _, dt := range bucketMatrix.Dates {
		if _, ok := returnDates[dt.Unix()]; ok {
			overlap++
		}
	}

	if overlap == 0 {
		return nil, ErrPeriodicityMismatch
	}

	if overlap < MinOverlapPeriods {
		log.Warn().Int("OverlapPeriods", overlap).Int("MinOverlapPeriods", MinOverlapPeriods).
			Msg("few common dates between return matrix and factor; results may be statistically unreliable")
	}

	// assets the return matrix knows nothing about
	missingAssets := 0
	for _, asset := range ranked.Assets() {
		if trimmed.ColIndex(asset) == -1 {
			missingAssets++
		}
	}
	if missingAssets > 0 {
		log.Warn().Int("AssetCount", missingAssets).Msg("return matrix has no data for some factor assets")
	}

	loss := LossSummary{
		TotalObservations: len(ranked.Obs) + ranked.DroppedNull,
		NullFactor:        ranked.DroppedNull,
	}
	for _, o := range ranked.Obs {
		rowIdx, ok := returnDates[o.Date.Unix()]
		if !ok {
			loss.NoDateOverlap++
			continue
		}
		if !hasReturnData(trimmed, o.AssetID, rowIdx, holdingPeriod) {
			loss.NoReturnData++
		}
	}

	aligned := &AlignedInputs{
		NtileMatrix:   bucketMatrix.ReindexLike(trimmed),
		FactorMatrix:  ranked.FactorMatrix().ReindexLike(trimmed),
		Returns:       trimmed.Copy(),
		Ranked:        ranked,
		HoldingPeriod: holdingPeriod,
		Loss:          loss,
	}

	return aligned, nil
}

// hasReturnData reports whether the asset has at least one finite return in
// the holding window [rowIdx, rowIdx+holdingPeriod)
func hasReturnData(returns *dataframe.DataFrame, asset string, rowIdx, holdingPeriod int) bool {
	col := returns.Col(asset)
	if col == nil {
		return false
	}

	end := rowIdx + holdingPeriod
	if end > len(col) {
		end = len(col)
	}
	for ii := rowIdx; ii < end; ii++ {
		if !math.IsNaN(col[ii]) && !math.IsInf(col[ii], 0) {
			return true
		}
	}
	return false
}
