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

package tears

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/stats"
)

// TurnoverTear measures factor stability: the autocorrelation of factor
// values over one holding period and the membership turnover of the extreme
// buckets. High turnover means the simulated books trade heavily and realized
// spreads will be eaten by costs the simulation does not model.
type TurnoverTear struct {
	in Inputs

	autocorr *dataframe.DataFrame
	turnover *dataframe.DataFrame

	acMean   float64
	acMedian float64
	acStd    float64
	toMean   map[string]float64
}

func (t *TurnoverTear) Compute() error {
	holding := t.in.Aligned.HoldingPeriod
	ntileM := t.in.Aligned.NtileMatrix
	factorM := t.in.Aligned.FactorMatrix

	if ntileM.Len() <= holding {
		return ErrShortHistory
	}

	// the first holding-period rows of the shifted matrix are all NaN and
	// fall out as NaN correlations
	autocorr, err := stats.CrossSectionalCorrelation(factorM, factorM.Shift(holding))
	if err != nil {
		return err
	}
	t.autocorr = autocorr

	ac := autocorr.Col(stats.CorrelationColumn)
	t.acMean = stats.Mean(ac)
	t.acMedian = stats.Median(ac)
	t.acStd = stats.Std(ac)

	t.turnover = t.membershipTurnover(ntileM, holding)

	t.toMean = make(map[string]float64, t.turnover.ColCount())
	for _, colName := range t.turnover.ColNames {
		t.toMean[colName] = stats.Mean(t.turnover.Col(colName))
	}

	return nil
}

// membershipTurnover computes, per date, the fraction of each extreme
// bucket's members that were not in the same bucket one holding period
// earlier. A missing prior assignment counts as changed. Values are always
// within [0, 1]; dates where the bucket is empty are NaN.
func (t *TurnoverTear) membershipTurnover(ntileM *dataframe.DataFrame, holding int) *dataframe.DataFrame {
	extremes := []int{1, t.in.Aligned.Ranked.Ntiles}
	if extremes[0] == extremes[1] {
		extremes = extremes[:1]
	}

	rows := ntileM.Len() - holding
	dates := make([]time.Time, rows)
	copy(dates, ntileM.Dates[holding:])

	out := &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	for _, bucket := range extremes {
		target := float64(bucket)
		col := make([]float64, rows)
		for rowIdx := 0; rowIdx < rows; rowIdx++ {
			count := 0
			changed := 0
			for colIdx := range ntileM.Vals {
				if ntileM.Vals[colIdx][rowIdx+holding] != target {
					continue
				}
				count++
				if ntileM.Vals[colIdx][rowIdx] != target {
					changed++
				}
			}
			if count == 0 {
				col[rowIdx] = math.NaN()
			} else {
				col[rowIdx] = float64(changed) / float64(count)
			}
		}
		out.Insert(backtest.NtileColumn(bucket), col)
	}

	return out
}

// Autocorrelation returns the daily factor autocorrelation series
func (t *TurnoverTear) Autocorrelation() *dataframe.DataFrame {
	return t.autocorr
}

// Turnover returns the daily membership turnover series per extreme bucket
func (t *TurnoverTear) Turnover() *dataframe.DataFrame {
	return t.turnover
}

func (t *TurnoverTear) Render(w io.Writer) error {
	if t.autocorr == nil {
		return ErrNotComputed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Value"})
	table.SetBorder(false)

	table.Append([]string{"Mean Factor Autocorrelation", fmt.Sprintf("%.4f", t.acMean)})
	table.Append([]string{"Median Factor Autocorrelation", fmt.Sprintf("%.4f", t.acMedian)})
	table.Append([]string{"Autocorrelation Std", fmt.Sprintf("%.4f", t.acStd)})

	for _, colName := range t.turnover.ColNames {
		table.Append([]string{
			fmt.Sprintf("Mean Turnover %s", colName),
			fmt.Sprintf("%.4f", t.toMean[colName]),
		})
	}

	table.Render()
	return nil
}
