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

var _ = Describe("DataFrame math operations", func() {
	var df *dataframe.DataFrame

	BeforeEach(func() {
		df = &dataframe.DataFrame{
			Dates:    []time.Time{day(1), day(2), day(3), day(4)},
			ColNames: []string{"A"},
			Vals:     [][]float64{{1, 2, 3, 4}},
		}
	})

	Context("when computing a trailing rolling sum", func() {
		It("truncates to rows with a full window", func() {
			out := df.RollingSum(2)
			Expect(out.Len()).To(Equal(3))
			Expect(out.Dates[0]).To(Equal(day(2)))
			Expect(out.Vals[0]).To(Equal([]float64{3, 5, 7}))
		})

		It("is a copy for a window of one", func() {
			out := df.RollingSum(1)
			Expect(out.Vals[0]).To(Equal(df.Vals[0]))
			out.Vals[0][0] = 99
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("collapses to a single row when the window spans the frame", func() {
			out := df.RollingSum(4)
			Expect(out.Len()).To(Equal(1))
			Expect(out.Vals[0][0]).To(Equal(10.0))
		})
	})

	Context("when computing percent change", func() {
		It("marks the warm-up rows NaN", func() {
			out := df.PctChange(2)
			Expect(math.IsNaN(out.Vals[0][0])).To(BeTrue())
			Expect(math.IsNaN(out.Vals[0][1])).To(BeTrue())
			Expect(out.Vals[0][2]).To(BeNumerically("~", 2.0, 1e-12))
			Expect(out.Vals[0][3]).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	Context("when shifting", func() {
		It("lags values down the index for positive n", func() {
			out := df.Shift(1)
			Expect(math.IsNaN(out.Vals[0][0])).To(BeTrue())
			Expect(out.Vals[0][1]).To(Equal(1.0))
			Expect(out.Vals[0][3]).To(Equal(3.0))
		})

		It("leads values up the index for negative n", func() {
			out := df.Shift(-1)
			Expect(out.Vals[0][0]).To(Equal(2.0))
			Expect(math.IsNaN(out.Vals[0][3])).To(BeTrue())
		})
	})

	Context("when compounding", func() {
		It("computes the cumulative product down each column", func() {
			out := df.AddScalar(1).CumProd()
			Expect(out.Vals[0][0]).To(Equal(2.0))
			Expect(out.Vals[0][3]).To(Equal(2.0 * 3 * 4 * 5))
		})

		It("leaves the source frame untouched", func() {
			df.CumProd()
			Expect(df.Vals[0]).To(Equal([]float64{1, 2, 3, 4}))
		})
	})

	Context("when subtracting a vector", func() {
		It("applies the vector to every column", func() {
			two := &dataframe.DataFrame{
				Dates:    df.Dates,
				ColNames: []string{"A", "B"},
				Vals:     [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}},
			}
			out := two.SubVec([]float64{1, 1, 1, 1})
			Expect(out.Vals[0]).To(Equal([]float64{0, 1, 2, 3}))
			Expect(out.Vals[1]).To(Equal([]float64{4, 5, 6, 7}))
		})
	})

	Context("when counting matches per row", func() {
		It("counts columns satisfying the predicate", func() {
			two := &dataframe.DataFrame{
				Dates:    df.Dates,
				ColNames: []string{"A", "B"},
				Vals:     [][]float64{{1, 2, 3, 4}, {5, 1, 7, 1}},
			}
			out := two.Count(func(x float64) bool { return x > 2 })
			Expect(out.Vals[0]).To(Equal([]float64{1, 0, 2, 1}))
		})
	})

	Context("when summing rows", func() {
		It("produces one total per date", func() {
			two := &dataframe.DataFrame{
				Dates:    df.Dates,
				ColNames: []string{"A", "B"},
				Vals:     [][]float64{{1, 2, 3, 4}, {10, 20, 30, 40}},
			}
			Expect(two.SumRows()).To(Equal([]float64{11, 22, 33, 44}))
		})
	})
})
