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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/factorlab/ntiles/dataframe"
)

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("DataFrame structural operations", func() {
	var df *dataframe.DataFrame

	BeforeEach(func() {
		df = &dataframe.DataFrame{
			Dates:    []time.Time{day(1), day(2), day(3), day(4), day(5)},
			ColNames: []string{"A", "B"},
			Vals: [][]float64{
				{1, 2, 3, 4, 5},
				{10, 20, 30, 40, 50},
			},
		}
	})

	Context("when trimming by date range", func() {
		It("keeps both endpoints when they match rows exactly", func() {
			out := df.Trim(day(2), day(4))
			Expect(out.Len()).To(Equal(3))
			Expect(out.Start()).To(Equal(day(2)))
			Expect(out.End()).To(Equal(day(4)))
		})

		It("snaps to interior rows when the endpoints fall between rows", func() {
			out := df.Trim(day(1).Add(time.Hour), day(5).Add(-time.Hour))
			Expect(out.Len()).To(Equal(3))
			Expect(out.Start()).To(Equal(day(2)))
			Expect(out.End()).To(Equal(day(4)))
		})

		It("returns an empty frame for a disjoint range", func() {
			out := df.Trim(day(20), day(25))
			Expect(out.Len()).To(Equal(0))
		})

		It("returns an empty frame when end precedes begin", func() {
			out := df.Trim(day(4), day(2))
			Expect(out.Len()).To(Equal(0))
		})
	})

	Context("when reindexing", func() {
		It("copies matching cells and fills the rest with NaN", func() {
			out := df.Reindex([]time.Time{day(2), day(6)}, []string{"B", "Z"})
			Expect(out.Len()).To(Equal(2))
			Expect(out.ColNames).To(Equal([]string{"B", "Z"}))
			Expect(out.Vals[0][0]).To(Equal(20.0))
			Expect(math.IsNaN(out.Vals[0][1])).To(BeTrue())
			Expect(math.IsNaN(out.Vals[1][0])).To(BeTrue())
		})

		It("is a no-op when reindexing onto itself", func() {
			out := df.ReindexLike(df)
			Expect(out.Dates).To(Equal(df.Dates))
			Expect(out.Vals).To(Equal(df.Vals))
		})
	})

	Context("when slicing rows", func() {
		It("returns a copy of the half-open range", func() {
			out := df.Slice(1, 3)
			Expect(out.Len()).To(Equal(2))
			Expect(out.Start()).To(Equal(day(2)))

			out.Vals[0][0] = 99
			Expect(df.Vals[0][1]).To(Equal(2.0))
		})
	})

	Context("when dropping rows by value", func() {
		It("removes rows containing NaN in any column", func() {
			df.Vals[1][2] = math.NaN()
			out := df.Drop(math.NaN())
			Expect(out.Len()).To(Equal(4))
			Expect(out.Dates).NotTo(ContainElement(day(3)))
		})
	})

	Context("when selecting columns", func() {
		It("keeps requested order and skips unknown columns", func() {
			out := df.Select("B", "Z", "A")
			Expect(out.ColNames).To(Equal([]string{"B", "A"}))
			Expect(out.Vals[0][0]).To(Equal(10.0))
		})
	})

	Context("when filtering by frequency", func() {
		It("keeps the last row of each month for MonthEnd", func() {
			monthly := &dataframe.DataFrame{
				Dates: []time.Time{
					time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC),
					time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC),
					time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2021, 2, 26, 0, 0, 0, 0, time.UTC),
				},
				ColNames: []string{"A"},
				Vals:     [][]float64{{1, 2, 3, 4}},
			}
			out := monthly.Frequency(dataframe.MonthEnd)
			Expect(out.Len()).To(Equal(2))
			Expect(out.Vals[0]).To(Equal([]float64{2, 4}))
		})
	})

	Context("when rendering a table", func() {
		It("includes every column header", func() {
			table := df.Table()
			Expect(table).To(ContainSubstring("A"))
			Expect(table).To(ContainSubstring("B"))
			Expect(table).To(ContainSubstring("2021-01-01"))
		})
	})
})

var _ = Describe("DataFrameMap", func() {
	It("returns keys in lexical order and trims members", func() {
		dfMap := dataframe.DataFrameMap{
			"b": &dataframe.DataFrame{
				Dates:    []time.Time{day(1), day(2), day(3)},
				ColNames: []string{"A"},
				Vals:     [][]float64{{1, 2, 3}},
			},
			"a": &dataframe.DataFrame{
				Dates:    []time.Time{day(1), day(2), day(3)},
				ColNames: []string{"A"},
				Vals:     [][]float64{{4, 5, 6}},
			},
		}

		Expect(dfMap.SortedKeys()).To(Equal([]string{"a", "b"}))

		trimmed := dfMap.Trim(day(2), day(3))
		Expect(trimmed["a"].Len()).To(Equal(2))
		Expect(trimmed["b"].Vals[0]).To(Equal([]float64{2, 3}))
	})
})

var _ = Describe("Column-wise multiplication", func() {
	It("multiplies matching columns and leaves the rest unchanged", func() {
		a := &dataframe.DataFrame{
			Dates:    []time.Time{day(1), day(2)},
			ColNames: []string{"A", "B"},
			Vals:     [][]float64{{2, 3}, {4, 5}},
		}
		b := &dataframe.DataFrame{
			Dates:    []time.Time{day(1), day(2)},
			ColNames: []string{"B"},
			Vals:     [][]float64{{10, 10}},
		}

		out := a.Mul(b)
		Expect(out.Vals[0]).To(Equal([]float64{2, 3}))
		Expect(out.Vals[1]).To(Equal([]float64{40, 50}))
	})
})

var _ = Describe("Row insertion", func() {
	It("appends a row after the last date", func() {
		df := &dataframe.DataFrame{
			Dates:    []time.Time{day(1)},
			ColNames: []string{"A", "B"},
			Vals:     [][]float64{{1}, {2}},
		}

		df.InsertRow(day(2), 3, 4)
		Expect(df.Len()).To(Equal(2))
		Expect(df.Vals[0]).To(Equal([]float64{1, 3}))
		Expect(df.Vals[1]).To(Equal([]float64{2, 4}))
	})
})
