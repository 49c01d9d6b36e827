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

package stats_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/factorlab/ntiles/stats"
)

var _ = Describe("Return statistics", func() {
	Context("when computing forward returns", func() {
		It("reports the return realized over the next holding period", func() {
			returns := frame([]float64{0.10, 0.20, 0.30})

			fwd := stats.ForwardReturns(returns, 1)
			Expect(fwd.Vals[0][0]).To(BeNumerically("~", 0.20, 1e-12))
			Expect(fwd.Vals[0][1]).To(BeNumerically("~", 0.30, 1e-12))
			Expect(math.IsNaN(fwd.Vals[0][2])).To(BeTrue())
		})

		It("compounds across multi-period windows", func() {
			returns := frame([]float64{0.10, 0.10, 0.10})

			fwd := stats.ForwardReturns(returns, 2)
			Expect(fwd.Vals[0][0]).To(BeNumerically("~", 1.1*1.1-1, 1e-12))
			Expect(math.IsNaN(fwd.Vals[0][1])).To(BeTrue())
		})
	})

	Context("when computing cumulative returns", func() {
		It("compounds from a base of one", func() {
			cum := stats.CumulativeReturns(frame([]float64{0.10, -0.50}))
			Expect(cum.Vals[0][0]).To(BeNumerically("~", 1.1, 1e-12))
			Expect(cum.Vals[0][1]).To(BeNumerically("~", 0.55, 1e-12))
		})
	})

	Context("when computing drawdowns", func() {
		It("finds the largest peak-to-trough loss", func() {
			dd := stats.MaxDrawdown(frame([]float64{0.10, -0.50, 1.00}))
			Expect(dd[0]).To(BeNumerically("~", -50.0, 1e-9))
		})

		It("is zero for a monotone series", func() {
			dd := stats.MaxDrawdown(frame([]float64{0.10, 0.10, 0.10}))
			Expect(dd[0]).To(BeZero())
		})
	})

	Context("when counting up periods", func() {
		It("ignores NaN rows", func() {
			up := stats.PercentPeriodsUp(frame([]float64{0.10, -0.10, math.NaN(), 0.20}))
			Expect(up[0]).To(BeNumerically("~", 100.0*2/3, 1e-9))
		})
	})

	Context("scalar summaries", func() {
		It("filters non-finite values", func() {
			Expect(stats.Mean([]float64{1, math.NaN(), 3})).To(BeNumerically("~", 2.0, 1e-12))
			Expect(stats.Median([]float64{3, 1, math.Inf(1), 2})).To(BeNumerically("~", 2.0, 1e-12))
			Expect(stats.Std([]float64{1, 3, math.NaN()})).To(BeNumerically("~", math.Sqrt2, 1e-12))
		})

		It("returns NaN when nothing finite remains", func() {
			Expect(math.IsNaN(stats.Mean([]float64{math.NaN()}))).To(BeTrue())
			Expect(math.IsNaN(stats.Std([]float64{1}))).To(BeTrue())
			Expect(math.IsNaN(stats.Skew([]float64{}))).To(BeTrue())
		})
	})
})
