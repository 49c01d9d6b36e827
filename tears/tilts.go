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

	"github.com/olekukonko/tablewriter"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/stats"
)

// UnclassifiedGroup collects assets the group provider has no label for
const UnclassifiedGroup = "unclassified"

// LongShortColumn labels the dollar-neutral top-minus-bottom book in tilt
// output
const LongShortColumn = "Long-Short"

// TiltsTear measures group (e.g. sector) exposure of the extreme bucket
// portfolios. A bucket's tilt toward a group is its portfolio weight in that
// group minus the group's share of the equal-weight universe, so a factor
// that merely proxies sector membership shows up as a large persistent tilt.
type TiltsTear struct {
	in Inputs

	labels []string
	books  []string
	tilts  map[string]*dataframe.DataFrame
	avg    map[string][]float64
}

func (t *TiltsTear) Compute() error {
	if t.in.Groups == nil {
		return ErrNoGroups
	}

	result, err := backtest.Run(t.in.Aligned.NtileMatrix, t.in.Aligned.Returns, t.in.Sim)
	if err != nil {
		return err
	}

	assets := t.in.Aligned.Returns.ColNames
	labelOf := make(map[string]string, len(assets))
	unclassified := false
	for _, asset := range assets {
		group, ok := t.in.Groups.Group(asset)
		if !ok {
			group = UnclassifiedGroup
			unclassified = true
		}
		labelOf[asset] = group
	}

	t.labels = t.in.Groups.Groups()
	if unclassified {
		t.labels = append(t.labels, UnclassifiedGroup)
	}

	longBook := backtest.NtileColumn(1)
	shortBook := backtest.NtileColumn(t.in.Sim.Ntiles)

	universeComp := composition(result.DailyWeights[backtest.UniverseColumn], t.labels, labelOf)
	longComp := composition(result.DailyWeights[longBook], t.labels, labelOf)
	shortComp := composition(result.DailyWeights[shortBook], t.labels, labelOf)

	longTilt := longComp.Copy()
	shortTilt := shortComp.Copy()
	longShort := longComp.Copy()
	for colIdx := range t.labels {
		for rowIdx := range longTilt.Vals[colIdx] {
			longTilt.Vals[colIdx][rowIdx] -= universeComp.Vals[colIdx][rowIdx]
			shortTilt.Vals[colIdx][rowIdx] -= universeComp.Vals[colIdx][rowIdx]
			// the universe share cancels between the two legs of the
			// dollar-neutral book
			longShort.Vals[colIdx][rowIdx] = (longComp.Vals[colIdx][rowIdx] - shortComp.Vals[colIdx][rowIdx]) / 2
		}
	}

	t.books = []string{longBook, shortBook, LongShortColumn}
	t.tilts = map[string]*dataframe.DataFrame{
		longBook:        longTilt,
		shortBook:       shortTilt,
		LongShortColumn: longShort,
	}

	t.avg = make(map[string][]float64, len(t.books))
	for _, book := range t.books {
		avg := make([]float64, len(t.labels))
		for colIdx := range t.labels {
			avg[colIdx] = stats.Mean(t.tilts[book].Vals[colIdx])
		}
		t.avg[book] = avg
	}

	return nil
}

// composition converts an asset weight matrix into per-date group shares;
// each row is normalized by its total deployed weight so capped or partially
// deployed books still sum to 1. Rows with no weight are NaN.
func composition(weights *dataframe.DataFrame, labels []string, labelOf map[string]string) *dataframe.DataFrame {
	labelIdx := make(map[string]int, len(labels))
	for idx, label := range labels {
		labelIdx[label] = idx
	}

	out := dataframe.New(weights.Dates, labels)
	for rowIdx := 0; rowIdx < weights.Len(); rowIdx++ {
		sums := make([]float64, len(labels))
		total := 0.0
		for colIdx, asset := range weights.ColNames {
			w := weights.Vals[colIdx][rowIdx]
			if w == 0 {
				continue
			}
			sums[labelIdx[labelOf[asset]]] += w
			total += w
		}

		for idx := range labels {
			if total == 0 {
				out.Vals[idx][rowIdx] = math.NaN()
			} else {
				out.Vals[idx][rowIdx] = sums[idx] / total
			}
		}
	}

	return out
}

// Tilt returns the per-date group tilt frame for one book ("Ntile: 1",
// "Ntile: N" or "Long-Short")
func (t *TiltsTear) Tilt(book string) *dataframe.DataFrame {
	return t.tilts[book]
}

func (t *TiltsTear) Render(w io.Writer) error {
	if t.tilts == nil {
		return ErrNotComputed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Group"}, t.books...))
	table.SetBorder(false)

	for labelIdx, label := range t.labels {
		row := []string{t.in.Groups.Name(label)}
		for _, book := range t.books {
			row = append(row, fmt.Sprintf("%.4f", t.avg[book][labelIdx]))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}
