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

package dataframe

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] += scalar
		}
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] *= scalar
		}
	}
	return df
}

// SubVec subtracts the vector from all columns in the dataframe and returns a
// new dataframe. Panics if rows are not equal.
func (df *DataFrame) SubVec(vec []float64) *DataFrame {
	df = df.Copy()
	for idx := range df.ColNames {
		floats.Sub(df.Vals[idx], vec)
	}
	return df
}

// Mul multiplies all columns in dataframe df by the corresponding column in
// dataframe other and returns a new dataframe. Columns with no match in other
// are left unchanged. Panics if rows are not equal.
func (df *DataFrame) Mul(other *DataFrame) *DataFrame {
	df = df.Copy()

	otherMap := make(map[string]int, len(other.ColNames))
	for idx, val := range other.ColNames {
		otherMap[val] = idx
	}

	for idx, colName := range df.ColNames {
		if otherIdx, ok := otherMap[colName]; ok {
			floats.Mul(df.Vals[idx], other.Vals[otherIdx])
		}
	}
	return df
}

// Count creates a new dataframe holding, per row, the number of columns where
// the expression lambda evaluates to true; result is in the `count` column
func (df *DataFrame) Count(lambda func(x float64) bool) *DataFrame {
	res := &DataFrame{
		Dates:    df.Dates,
		Vals:     [][]float64{make([]float64, df.Len())},
		ColNames: []string{"count"},
	}

	for rowIdx := range df.Dates {
		cnt := 0
		for _, col := range df.Vals {
			if lambda(col[rowIdx]) {
				cnt++
			}
		}
		res.Vals[0][rowIdx] = float64(cnt)
	}

	return res
}

// CumProd computes the cumulative product down each column and returns a new dataframe
func (df *DataFrame) CumProd() *DataFrame {
	df = df.Copy()

	for colIdx := range df.ColNames {
		roll := 1.0
		for rowIdx := range df.Vals[colIdx] {
			roll *= df.Vals[colIdx][rowIdx]
			df.Vals[colIdx][rowIdx] = roll
		}
	}
	return df
}

// PctChange computes the fractional change between each value and the value n
// rows earlier; the first n rows are NaN
func (df *DataFrame) PctChange(n int) *DataFrame {
	df2 := df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df.Vals[colIdx] {
			if rowIdx < n {
				df2.Vals[colIdx][rowIdx] = math.NaN()
				continue
			}
			df2.Vals[colIdx][rowIdx] = df.Vals[colIdx][rowIdx]/df.Vals[colIdx][rowIdx-n] - 1
		}
	}
	return df2
}

// Shift moves values down the date index by n rows (a positive n lags the
// data, a negative n leads it), filling vacated cells with NaN, and returns a
// new dataframe
func (df *DataFrame) Shift(n int) *DataFrame {
	df2 := df.Copy()

	for colIdx := range df.ColNames {
		for rowIdx := range df2.Vals[colIdx] {
			srcIdx := rowIdx - n
			if srcIdx < 0 || srcIdx >= df.Len() {
				df2.Vals[colIdx][rowIdx] = math.NaN()
			} else {
				df2.Vals[colIdx][rowIdx] = df.Vals[colIdx][srcIdx]
			}
		}
	}
	return df2
}

// RollingSum computes a trailing sum over a window of n rows down each column.
// The result is truncated to the rows where a full window exists: row k of the
// output is the sum of input rows [k, k+n) and the output has len-n+1 rows.
func (df *DataFrame) RollingSum(n int) *DataFrame {
	if n == 1 {
		return df.Copy()
	}

	outLen := df.Len() - n + 1
	out := &DataFrame{
		Dates:    make([]time.Time, outLen),
		ColNames: df.ColNames,
		Vals:     make([][]float64, len(df.Vals)),
	}
	copy(out.Dates, df.Dates[n-1:])

	for colIdx := range df.Vals {
		out.Vals[colIdx] = make([]float64, outLen)
		roll := 0.0
		for rowIdx := range df.Vals[colIdx] {
			roll += df.Vals[colIdx][rowIdx]
			if rowIdx >= n {
				roll -= df.Vals[colIdx][rowIdx-n]
			}
			if rowIdx >= n-1 {
				out.Vals[colIdx][rowIdx-n+1] = roll
			}
		}
	}

	return out
}

// RollingSumScaled computes ∑ over a trailing window of n rows multiplied by
// scalar and returns a new dataframe of the same length with NaNs during the
// warm-up period
func (df *DataFrame) RollingSumScaled(n int, scalar float64) *DataFrame {
	df2 := df.Copy()
	for colIdx := range df.ColNames {
		roll := 0.0
		dropIdx := 0
		for rowIdx := range df.Vals[colIdx] {
			switch {
			case rowIdx >= n:
				roll += df.Vals[colIdx][rowIdx]
				roll -= df.Vals[colIdx][dropIdx]
				df2.Vals[colIdx][rowIdx] = roll * scalar
				dropIdx++
			case rowIdx == (n - 1):
				roll += df.Vals[colIdx][rowIdx]
				df2.Vals[colIdx][rowIdx] = roll * scalar
			default:
				df2.Vals[colIdx][rowIdx] = math.NaN()
				roll += df.Vals[colIdx][rowIdx]
			}
		}
	}
	return df2
}

// SumRows sums each row across columns and returns one value per date
func (df *DataFrame) SumRows() []float64 {
	sums := make([]float64, df.Len())
	for rowIdx := range df.Dates {
		total := 0.0
		for _, col := range df.Vals {
			total += col[rowIdx]
		}
		sums[rowIdx] = total
	}
	return sums
}
