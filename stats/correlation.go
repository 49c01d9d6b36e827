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
	"runtime"
	"sync"

	"github.com/factorlab/ntiles/dataframe"
	"gonum.org/v1/gonum/stat"
)

// CorrelationColumn is the column name of the series returned by
// CrossSectionalCorrelation
const CorrelationColumn = "correlation"

// CrossSectionalCorrelation computes one Pearson correlation coefficient per
// date between two equally shaped matrices, considering only columns where
// both cells are finite that date. Dates with fewer than two finite pairs
// yield NaN. Rows are independent and are computed in parallel.
func CrossSectionalCorrelation(a, b *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if a.Len() != b.Len() || a.ColCount() != b.ColCount() {
		return nil, dataframe.ErrShapeMismatch
	}

	out := make([]float64, a.Len())

	nWorkers := runtime.GOMAXPROCS(0)
	if nWorkers > a.Len() {
		nWorkers = a.Len()
	}

	var wg sync.WaitGroup
	for worker := 0; worker < nWorkers; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			x := make([]float64, 0, a.ColCount())
			y := make([]float64, 0, a.ColCount())

			for rowIdx := worker; rowIdx < a.Len(); rowIdx += nWorkers {
				x = x[:0]
				y = y[:0]
				for colIdx := 0; colIdx < a.ColCount(); colIdx++ {
					av := a.Vals[colIdx][rowIdx]
					bv := b.Vals[colIdx][rowIdx]
					if isFinite(av) && isFinite(bv) {
						x = append(x, av)
						y = append(y, bv)
					}
				}

				if len(x) < 2 {
					out[rowIdx] = math.NaN()
				} else {
					out[rowIdx] = stat.Correlation(x, y, nil)
				}
			}
		}(worker)
	}
	wg.Wait()

	return &dataframe.DataFrame{
		Dates:    a.Dates,
		ColNames: []string{CorrelationColumn},
		Vals:     [][]float64{out},
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
