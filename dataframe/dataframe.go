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
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// New creates an empty dataframe with the given columns and one NaN-filled
// value slice per column for each date
func New(dates []time.Time, colNames []string) *DataFrame {
	vals := make([][]float64, len(colNames))
	for colIdx := range vals {
		vals[colIdx] = make([]float64, len(dates))
		for rowIdx := range vals[colIdx] {
			vals[colIdx][rowIdx] = math.NaN()
		}
	}

	return &DataFrame{
		Dates:    dates,
		ColNames: colNames,
		Vals:     vals,
	}
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// ColIndex returns the index of the specified column; -1 if the column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// Col returns the value slice for the named column; nil if the column doesn't exist.
// The slice aliases the dataframe's storage - callers that mutate it should copy first.
func (df *DataFrame) Col(colName string) []float64 {
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		return nil
	}

	return df.Vals[colIdx]
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` in any column
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))

	for idx, rowDate := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			rowVal := col[idx]
			keep = keep && !(rowVal == val || (isNA && math.IsNaN(rowVal)))
			if !keep {
				break
			}
		}

		if keep {
			newDates = append(newDates, rowDate)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[idx])
			}
		}
	}

	df.Vals = newVals
	df.Dates = newDates
	return df
}

// End returns the last date in the dataframe
func (df *DataFrame) End() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}

	return df.Dates[len(df.Dates)-1]
}

// Frequency returns a dataframe filtered to the requested frequency; note this
// is not an in-place function but creates a copy of the data. Boundary rows are
// determined from the index itself: e.g. a WeekEnd row is the last row of its
// ISO week actually present in the index.
func (df *DataFrame) Frequency(frequency Frequency) *DataFrame {
	var keyFunc func(time.Time) string

	switch frequency {
	case Daily:
		keyFunc = func(t time.Time) string { return t.Format("2006-01-02") }
	case WeekBegin, WeekEnd:
		keyFunc = func(t time.Time) string {
			year, week := t.ISOWeek()
			return fmt.Sprintf("%d-%d", year, week)
		}
	case MonthBegin, MonthEnd:
		keyFunc = func(t time.Time) string { return t.Format("2006-01") }
	case YearBegin, YearEnd:
		keyFunc = func(t time.Time) string { return t.Format("2006") }
	default:
		log.Panic().Str("Frequency", string(frequency)).Msg("unknown frequency provided to dataframe frequency function")
	}

	begin := frequency == WeekBegin || frequency == MonthBegin || frequency == YearBegin

	newDates := make([]time.Time, 0, len(df.Dates))
	newVals := make([][]float64, len(df.ColNames))
	for idx, rowDate := range df.Dates {
		var boundary bool
		if begin {
			boundary = idx == 0 || keyFunc(df.Dates[idx-1]) != keyFunc(rowDate)
		} else {
			boundary = idx == len(df.Dates)-1 || keyFunc(df.Dates[idx+1]) != keyFunc(rowDate)
		}

		if boundary {
			newDates = append(newDates, rowDate)
			for colIdx := range newVals {
				newVals[colIdx] = append(newVals[colIdx], df.Vals[colIdx][idx])
			}
		}
	}

	return &DataFrame{
		Dates:    newDates,
		ColNames: df.ColNames,
		Vals:     newVals,
	}
}

// Insert adds a new column to the end of the dataframe
func (df *DataFrame) Insert(name string, col []float64) *DataFrame {
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return df
}

// InsertRow adds a new row to the dataframe. Date must be after the last date
// in the dataframe and vals must equal the number of columns, otherwise panic
func (df *DataFrame) InsertRow(date time.Time, vals ...float64) *DataFrame {
	if len(df.Dates) != 0 {
		last := df.Dates[len(df.Dates)-1]
		if !last.Before(date) {
			log.Panic().Time("lastDate", last).Time("newDate", date).Msg("newDate must be after lastDate")
		}
	}

	if len(vals) != len(df.ColNames) {
		log.Panic().Int("NumValsPassed", len(vals)).Int("NumColumns", len(df.ColNames)).Msg("number of vals passed must equal number of columns")
	}

	df.Dates = append(df.Dates, date)
	for colIdx := range df.ColNames {
		df.Vals[colIdx] = append(df.Vals[colIdx], vals[colIdx])
	}

	return df
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Reindex returns a new dataframe with exactly the requested row and column
// order. Cells present in df are copied; all others are NaN. This is the
// primitive underlying matrix alignment: the output shape is the caller's,
// not df's.
func (df *DataFrame) Reindex(dates []time.Time, colNames []string) *DataFrame {
	rowMap := make(map[int64]int, len(df.Dates))
	for idx, dt := range df.Dates {
		rowMap[dt.Unix()] = idx
	}

	out := New(dates, colNames)
	for colIdx, colName := range colNames {
		srcColIdx := df.ColIndex(colName)
		if srcColIdx == -1 {
			continue
		}
		for rowIdx, dt := range dates {
			if srcRowIdx, ok := rowMap[dt.Unix()]; ok {
				out.Vals[colIdx][rowIdx] = df.Vals[srcColIdx][srcRowIdx]
			}
		}
	}

	return out
}

// ReindexLike reindexes df onto the row and column order of other
func (df *DataFrame) ReindexLike(other *DataFrame) *DataFrame {
	return df.Reindex(other.Dates, other.ColNames)
}

// Select returns a new dataframe restricted to the named columns, in the
// given order; missing columns are skipped
func (df *DataFrame) Select(colNames ...string) *DataFrame {
	out := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	for _, colName := range colNames {
		if colIdx := df.ColIndex(colName); colIdx != -1 {
			out.ColNames = append(out.ColNames, colName)
			out.Vals = append(out.Vals, df.Vals[colIdx])
		}
	}

	return out
}

// Slice returns a copy of the dataframe restricted to rows [begin, end);
// panics if the range is out of bounds
func (df *DataFrame) Slice(begin, end int) *DataFrame {
	if begin < 0 || end > df.Len() || begin > end {
		log.Panic().Int("Begin", begin).Int("End", end).Int("NRows", df.Len()).Msg("slice range out of bounds")
	}

	out := &DataFrame{
		Dates:    make([]time.Time, end-begin),
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(out.Dates, df.Dates[begin:end])
	copy(out.ColNames, df.ColNames)
	for colIdx := range df.Vals {
		out.Vals[colIdx] = make([]float64, end-begin)
		copy(out.Vals[colIdx], df.Vals[colIdx][begin:end])
	}

	return out
}

// Start returns the first date of the dataframe
func (df *DataFrame) Start() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}

	return df.Dates[0]
}

// Table prints an ASCII formatted table to a string
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Date"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", df.Len())
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, rowDate := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, rowDate.Format("2006-01-02"))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}

		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive)
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		ColNames: df.ColNames,
		Dates:    df.Dates,
		Vals:     df.Vals,
	}

	// special case 0: requested range is invalid
	if end.Before(begin) {
		df2.Dates = make([]time.Time, 0)
		df2.Vals = make([][]float64, 0)
		return df2
	}

	// special case 1: data frame is empty
	if df.Len() == 0 {
		return df2
	}

	// special case 2: end time is before data frame start
	if end.Before(df.Start()) {
		df2.Dates = []time.Time{}
		df2.Vals = [][]float64{}
		return df2
	}

	// special case 3: start time is after data frame end
	if begin.After(df.End()) {
		df2.Dates = []time.Time{}
		df2.Vals = [][]float64{}
		return df2
	}

	// Use binary search to find the index corresponding to the start and end times
	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		idxVal := df.Dates[i]
		return (idxVal.After(begin) || idxVal.Equal(begin))
	})

	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		idxVal := df.Dates[i]
		return (idxVal.After(end) || idxVal.Equal(end))
	})

	if endIdx != len(df.Dates) && df.Dates[endIdx].Equal(end) {
		endIdx++
	}

	df2.Dates = df.Dates[beginIdx:endIdx]
	df2.Vals = make([][]float64, len(df.Vals))
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}
