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
	"gonum.org/v1/gonum/floats"

	"github.com/factorlab/ntiles/stats"
)

// BucketStats summarizes the factor values assigned to one bucket
type BucketStats struct {
	Ntile     int
	Median    float64
	Std       float64
	Min       float64
	Max       float64
	Count     int
	CountFrac float64
}

// InspectionTear reports per-bucket factor value statistics, a quick sanity
// check that the quantile assignment produced sensibly ordered, sensibly
// sized buckets
type InspectionTear struct {
	in Inputs

	buckets []BucketStats
}

func (t *InspectionTear) Compute() error {
	ranked := t.in.Aligned.Ranked
	total := len(ranked.Obs)

	values := make([][]float64, ranked.Ntiles+1)
	for idx, o := range ranked.Obs {
		bucket := ranked.Buckets[idx]
		values[bucket] = append(values[bucket], o.Value)
	}

	t.buckets = make([]BucketStats, 0, ranked.Ntiles)
	for bucket := 1; bucket <= ranked.Ntiles; bucket++ {
		bs := BucketStats{
			Ntile: bucket,
			Count: len(values[bucket]),
		}
		if total > 0 {
			bs.CountFrac = float64(bs.Count) / float64(total)
		}
		if bs.Count > 0 {
			bs.Median = stats.Median(values[bucket])
			bs.Std = stats.Std(values[bucket])
			bs.Min = floats.Min(values[bucket])
			bs.Max = floats.Max(values[bucket])
		}
		t.buckets = append(t.buckets, bs)
	}

	return nil
}

// Buckets returns the computed per-bucket statistics
func (t *InspectionTear) Buckets() []BucketStats {
	return t.buckets
}

func (t *InspectionTear) Render(w io.Writer) error {
	if t.buckets == nil {
		return ErrNotComputed
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ntile", "Median", "Std", "Min", "Max", "Count", "Count %"})
	table.SetBorder(false)

	for _, bs := range t.buckets {
		table.Append([]string{
			fmt.Sprintf("%d", bs.Ntile),
			fmt.Sprintf("%.4f", bs.Median),
			fmt.Sprintf("%.4f", bs.Std),
			fmt.Sprintf("%.4f", bs.Min),
			fmt.Sprintf("%.4f", bs.Max),
			fmt.Sprintf("%d", bs.Count),
			fmt.Sprintf("%.2f", bs.CountFrac*100),
		})
	}

	table.Render()
	return nil
}
