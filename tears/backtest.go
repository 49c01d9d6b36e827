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

	"github.com/olekukonko/tablewriter"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/stats"
)

// BacktestTear runs the bucket portfolio simulation and reports performance
// statistics per output series
type BacktestTear struct {
	in Inputs

	result *backtest.Result

	cumReturn []float64
	cagr      []float64
	vol       []float64
	maxDD     []float64
	periodsUp []float64
}

func (t *BacktestTear) Compute() error {
	result, err := backtest.Run(t.in.Aligned.NtileMatrix, t.in.Aligned.Returns, t.in.Sim)
	if err != nil {
		return err
	}
	t.result = result

	series := result.Returns
	cum := stats.CumulativeReturns(series)

	t.cumReturn = make([]float64, series.ColCount())
	lastRow := cum.Len() - 1
	for colIdx := range cum.Vals {
		t.cumReturn[colIdx] = (cum.Vals[colIdx][lastRow] - 1) * 100
	}

	t.cagr = stats.CAGR(cum)
	t.vol = stats.AnnualVolatility(series)
	t.periodsUp = stats.PercentPeriodsUp(series)
	t.maxDD = stats.MaxDrawdown(t.drawdownSeries(series))

	return nil
}

// drawdownSeries flips the sign of the bottom-half bucket columns when the
// simulation is market neutral: those books are implicitly short, so a
// drawdown is a run of positive raw returns
func (t *BacktestTear) drawdownSeries(series *dataframe.DataFrame) *dataframe.DataFrame {
	if !t.in.Sim.MarketNeutral {
		return series
	}

	flipped := series.Copy()
	for bucket := t.in.Sim.Ntiles/2 + 1; bucket <= t.in.Sim.Ntiles; bucket++ {
		colIdx := flipped.ColIndex(backtest.NtileColumn(bucket))
		if colIdx == -1 {
			continue
		}
		for rowIdx := range flipped.Vals[colIdx] {
			flipped.Vals[colIdx][rowIdx] = -flipped.Vals[colIdx][rowIdx]
		}
	}
	return flipped
}

// Result returns the underlying simulation output
func (t *BacktestTear) Result() *backtest.Result {
	return t.result
}

func (t *BacktestTear) Render(w io.Writer) error {
	if t.result == nil {
		return ErrNotComputed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Statistic"}, t.result.Returns.ColNames...))
	table.SetBorder(false)

	rows := []struct {
		name string
		vals []float64
	}{
		{"Cumulative Return (%)", t.cumReturn},
		{"CAGR (%)", t.cagr},
		{"Annual Volatility (%)", t.vol},
		{"Max Drawdown (%)", t.maxDD},
		{"Periods Up (%)", t.periodsUp},
	}

	for _, row := range rows {
		cells := make([]string, 0, len(row.vals)+1)
		cells = append(cells, row.name)
		for _, v := range row.vals {
			cells = append(cells, fmt.Sprintf("%.2f", v))
		}
		table.Append(cells)
	}

	table.Render()
	return nil
}
