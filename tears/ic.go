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

	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/stats"
)

// ICTear measures the information coefficient: the daily cross-sectional
// correlation between factor values and the return realized over the
// following holding period
type ICTear struct {
	in Inputs

	series *dataframe.DataFrame

	mean    float64
	std     float64
	riskAdj float64
	skew    float64
}

func (t *ICTear) Compute() error {
	holding := t.in.Aligned.HoldingPeriod

	// the trailing holding-period rows have no completed forward window
	n := t.in.Aligned.FactorMatrix.Len() - holding
	if n < 1 {
		return ErrShortHistory
	}

	forward := stats.ForwardReturns(t.in.Aligned.Returns, holding)

	series, err := stats.CrossSectionalCorrelation(
		t.in.Aligned.FactorMatrix.Slice(0, n),
		forward.Slice(0, n))
	if err != nil {
		return err
	}
	t.series = series

	ic := series.Col(stats.CorrelationColumn)
	t.mean = stats.Mean(ic)
	t.std = stats.Std(ic)
	t.riskAdj = t.mean / t.std
	t.skew = stats.Skew(ic)

	return nil
}

// Series returns the daily IC series
func (t *ICTear) Series() *dataframe.DataFrame {
	return t.series
}

// Summary returns mean, std, risk-adjusted IC and skew
func (t *ICTear) Summary() (mean, std, riskAdj, skew float64) {
	return t.mean, t.std, t.riskAdj, t.skew
}

func (t *ICTear) Render(w io.Writer) error {
	if t.series == nil {
		return ErrNotComputed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Value"})
	table.SetBorder(false)

	rows := []struct {
		name string
		val  float64
	}{
		{"Mean IC", t.mean},
		{"IC Std", t.std},
		{"Risk-Adjusted IC", t.riskAdj},
		{"IC Skew", t.skew},
	}
	for _, row := range rows {
		table.Append([]string{row.name, fmt.Sprintf("%.4f", row.val)})
	}

	table.Render()
	return nil
}
