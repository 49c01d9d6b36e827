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
	"math"
	"sort"
	"time"

	"github.com/factorlab/ntiles/dataframe"
)

// Ranked holds a factor series after quantile assignment. Observations with a
// null (NaN) factor value are excluded before ranking and tallied in
// DroppedNull; every remaining observation carries a bucket in [1, Ntiles]
// where bucket 1 holds the highest factor values.
type Ranked struct {
	Obs         []Observation
	Buckets     []int
	Ntiles      int
	DroppedNull int
}

// Rank partitions a factor series into ntiles buckets per date. Within a date
// observations are ordered by factor value descending and assigned buckets
// with SQL NTILE semantics: bucket sizes differ by at most one row and when
// the date's count is not divisible by ntiles the first buckets take the
// extra rows. Ties are broken by input order (stable sort), so repeated runs
// against the same series produce the same assignment.
func Rank(obs []Observation, ntiles int) (*Ranked, error) {
	if ntiles < 1 {
		return nil, ErrNtileCount
	}

	ranked := &Ranked{
		Obs:     make([]Observation, 0, len(obs)),
		Ntiles:  ntiles,
		Buckets: nil,
	}

	byDate := make(map[int64][]int)
	dateOrder := make([]int64, 0)
	for _, o := range obs {
		if math.IsNaN(o.Value) {
			ranked.DroppedNull++
			continue
		}

		k := o.Date.Unix()
		if _, ok := byDate[k]; !ok {
			dateOrder = append(dateOrder, k)
		}
		byDate[k] = append(byDate[k], len(ranked.Obs))
		ranked.Obs = append(ranked.Obs, o)
	}

	ranked.Buckets = make([]int, len(ranked.Obs))
	for _, dateKey := range dateOrder {
		rows := byDate[dateKey]
		sort.SliceStable(rows, func(i, j int) bool {
			return ranked.Obs[rows[i]].Value > ranked.Obs[rows[j]].Value
		})

		// NTILE partition: the first (m mod ntiles) buckets get one extra row
		m := len(rows)
		base := m / ntiles
		extra := m % ntiles

		pos := 0
		for bucket := 1; bucket <= ntiles; bucket++ {
			size := base
			if bucket <= extra {
				size++
			}
			for ii := 0; ii < size; ii++ {
				ranked.Buckets[rows[pos]] = bucket
				pos++
			}
		}
	}

	return ranked, nil
}

// Dates returns the sorted unique dates present in the ranked series
func (r *Ranked) Dates() []time.Time {
	seen := make(map[int64]time.Time, len(r.Obs))
	for _, o := range r.Obs {
		seen[o.Date.Unix()] = o.Date
	}

	dates := make([]time.Time, 0, len(seen))
	for _, dt := range seen {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Assets returns the sorted unique asset ids present in the ranked series
func (r *Ranked) Assets() []string {
	seen := make(map[string]struct{}, len(r.Obs))
	for _, o := range r.Obs {
		seen[o.AssetID] = struct{}{}
	}

	assets := make([]string, 0, len(seen))
	for asset := range seen {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// NtileMatrix unstacks bucket assignments into a date × asset matrix; cells
// with no observation are NaN
func (r *Ranked) NtileMatrix() *dataframe.DataFrame {
	return r.unstack(func(idx int) float64 { return float64(r.Buckets[idx]) })
}

// FactorMatrix unstacks factor values into a date × asset matrix; cells with
// no observation are NaN
func (r *Ranked) FactorMatrix() *dataframe.DataFrame {
	return r.unstack(func(idx int) float64 { return r.Obs[idx].Value })
}

func (r *Ranked) unstack(cell func(idx int) float64) *dataframe.DataFrame {
	dates := r.Dates()
	assets := r.Assets()

	rowMap := make(map[int64]int, len(dates))
	for idx, dt := range dates {
		rowMap[dt.Unix()] = idx
	}
	colMap := make(map[string]int, len(assets))
	for idx, asset := range assets {
		colMap[asset] = idx
	}

	df := dataframe.New(dates, assets)
	for idx, o := range r.Obs {
		df.Vals[colMap[o.AssetID]][rowMap[o.Date.Unix()]] = cell(idx)
	}

	return df
}
