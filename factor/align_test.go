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

package factor_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/factor"
)

func returnsFrame(dates []time.Time, assets []string) *dataframe.DataFrame {
	df := dataframe.New(dates, assets)
	for colIdx := range df.Vals {
		for rowIdx := range df.Vals[colIdx] {
			df.Vals[colIdx][rowIdx] = 0.01 * float64(colIdx+1)
		}
	}
	return df
}

var _ = Describe("Matrix alignment", func() {
	var returns *dataframe.DataFrame

	BeforeEach(func() {
		returns = returnsFrame(
			[]time.Time{day(1), day(2), day(3), day(4), day(5), day(6)},
			[]string{"A", "B", "C"})
	})

	Context("with a factor covering a subrange of the returns", func() {
		var aligned *factor.AlignedInputs

		BeforeEach(func() {
			ranked, err := factor.Rank([]factor.Observation{
				obsOn(2, "A", 2),
				obsOn(2, "B", 1),
				obsOn(3, "A", 1),
				obsOn(3, "B", 2),
				obsOn(4, "A", 2),
				obsOn(4, "B", 1),
			}, 2)
			Expect(err).To(BeNil())

			aligned, err = factor.Align(ranked, returns, 2)
			Expect(err).To(BeNil())
		})

		It("trims the return matrix to the factor's date range", func() {
			Expect(aligned.Returns.Start()).To(Equal(day(2)))
			Expect(aligned.Returns.End()).To(Equal(day(4)))
		})

		It("gives all three matrices one shape and order", func() {
			Expect(aligned.NtileMatrix.Dates).To(Equal(aligned.Returns.Dates))
			Expect(aligned.FactorMatrix.Dates).To(Equal(aligned.Returns.Dates))
			Expect(aligned.NtileMatrix.ColNames).To(Equal(aligned.Returns.ColNames))
			Expect(aligned.FactorMatrix.ColNames).To(Equal(aligned.Returns.ColNames))
		})

		It("marks cells without an assignment as NaN", func() {
			colC := aligned.NtileMatrix.Col("C")
			for _, v := range colC {
				Expect(math.IsNaN(v)).To(BeTrue())
			}
		})

		It("is idempotent", func() {
			again := aligned.NtileMatrix.ReindexLike(aligned.Returns)
			Expect(again.Dates).To(Equal(aligned.NtileMatrix.Dates))
			for colIdx := range again.Vals {
				for rowIdx := range again.Vals[colIdx] {
					a := again.Vals[colIdx][rowIdx]
					b := aligned.NtileMatrix.Vals[colIdx][rowIdx]
					if math.IsNaN(b) {
						Expect(math.IsNaN(a)).To(BeTrue())
					} else {
						Expect(a).To(Equal(b))
					}
				}
			}
		})

		It("does not alias the caller's return matrix", func() {
			aligned.Returns.Vals[0][0] = 42
			Expect(returns.Vals[0][1]).To(Equal(0.01))
		})
	})

	Context("with disjoint date ranges", func() {
		It("returns ErrNoDateOverlap", func() {
			ranked, err := factor.Rank([]factor.Observation{
				{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), AssetID: "A", Value: 1},
			}, 1)
			Expect(err).To(BeNil())

			_, err = factor.Align(ranked, returns, 2)
			Expect(err).To(MatchError(factor.ErrNoDateOverlap))
		})
	})

	Context("with overlapping ranges but no shared dates", func() {
		It("returns ErrPeriodicityMismatch", func() {
			sparse := returnsFrame([]time.Time{day(1), day(3), day(5)}, []string{"A"})
			ranked, err := factor.Rank([]factor.Observation{
				obsOn(2, "A", 1),
				obsOn(4, "A", 2),
			}, 1)
			Expect(err).To(BeNil())

			_, err = factor.Align(ranked, sparse, 2)
			Expect(err).To(MatchError(factor.ErrPeriodicityMismatch))
		})
	})

	Context("with an invalid holding period", func() {
		It("returns ErrHoldingPeriodRange", func() {
			ranked, err := factor.Rank([]factor.Observation{obsOn(1, "A", 1)}, 1)
			Expect(err).To(BeNil())

			_, err = factor.Align(ranked, returns, 0)
			Expect(err).To(MatchError(factor.ErrHoldingPeriodRange))
		})
	})

	Context("when observations cannot contribute", func() {
		It("tallies each loss cause", func() {
			obs := []factor.Observation{
				obsOn(2, "A", 2),
				obsOn(2, "B", math.NaN()), // null factor
				obsOn(3, "A", 1),
				obsOn(3, "Z", 3), // asset unknown to the return matrix
			}
			ranked, err := factor.Rank(obs, 2)
			Expect(err).To(BeNil())

			aligned, err := factor.Align(ranked, returns, 2)
			Expect(err).To(BeNil())

			Expect(aligned.Loss.TotalObservations).To(Equal(4))
			Expect(aligned.Loss.NullFactor).To(Equal(1))
			Expect(aligned.Loss.NoReturnData).To(Equal(1))
			Expect(aligned.Loss.Lost()).To(Equal(2))
			Expect(aligned.Loss.LostFrac()).To(BeNumerically("~", 0.5, 1e-12))
			Expect(aligned.Loss.NullFactorFrac()).To(BeNumerically("~", 0.25, 1e-12))
		})
	})
})
