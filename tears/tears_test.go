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

package tears_test

import (
	"bytes"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/data"
	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/factor"
	"github.com/factorlab/ntiles/tears"
)

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

// alignedFixture ranks a constant three-asset factor (A > B > C) over four
// dates against a dense return matrix with a two day holding period
func alignedFixture() *factor.AlignedInputs {
	obs := make([]factor.Observation, 0, 12)
	for d := 1; d <= 4; d++ {
		obs = append(obs,
			factor.Observation{Date: day(d), AssetID: "A", Value: 3},
			factor.Observation{Date: day(d), AssetID: "B", Value: 2},
			factor.Observation{Date: day(d), AssetID: "C", Value: 1},
		)
	}

	returns := &dataframe.DataFrame{
		Dates:    []time.Time{day(1), day(2), day(3), day(4)},
		ColNames: []string{"A", "B", "C"},
		Vals: [][]float64{
			{0.10, 0.20, -0.10, 0.05},
			{0.00, 0.10, 0.10, 0.00},
			{0.05, -0.05, 0.00, 0.10},
		},
	}

	ranked, err := factor.Rank(obs, 2)
	Expect(err).To(BeNil())

	aligned, err := factor.Align(ranked, returns, 2)
	Expect(err).To(BeNil())
	return aligned
}

func fixtureInputs() tears.Inputs {
	return tears.Inputs{
		Aligned: alignedFixture(),
		Sim: backtest.Config{
			Ntiles:        2,
			HoldingPeriod: 2,
			LongShort:     true,
			WeightCap:     1,
		},
		Groups: data.NewStaticGroups(
			map[string]string{"A": "tech", "B": "tech", "C": "fin"},
			map[string]string{"tech": "Technology", "fin": "Financials"}),
	}
}

var _ = Describe("Tear registry", func() {
	It("constructs every known kind", func() {
		for _, kind := range tears.All() {
			tear, err := tears.New(kind, fixtureInputs())
			Expect(err).To(BeNil())
			Expect(tear).NotTo(BeNil())
		}
	})

	It("rejects unknown kinds", func() {
		_, err := tears.New(tears.Kind(99), fixtureInputs())
		Expect(err).To(MatchError(tears.ErrUnknownKind))
	})

	It("round-trips kind names", func() {
		for _, kind := range tears.All() {
			parsed, err := tears.ParseKind(kind.String())
			Expect(err).To(BeNil())
			Expect(parsed).To(Equal(kind))
		}
	})

	It("refuses to render before computing", func() {
		for _, kind := range tears.All() {
			tear, err := tears.New(kind, fixtureInputs())
			Expect(err).To(BeNil())
			Expect(tear.Render(&bytes.Buffer{})).To(MatchError(tears.ErrNotComputed))
		}
	})
})

var _ = Describe("Inspection tear", func() {
	It("summarizes factor values per bucket", func() {
		tear := mustCompute(tears.KindInspection)
		buckets := tear.(*tears.InspectionTear).Buckets()
		Expect(buckets).To(HaveLen(2))

		Expect(buckets[0].Ntile).To(Equal(1))
		Expect(buckets[0].Count).To(Equal(8))
		Expect(buckets[0].CountFrac).To(BeNumerically("~", 8.0/12, 1e-12))
		Expect(buckets[0].Median).To(BeNumerically("~", 2.5, 1e-12))
		Expect(buckets[0].Min).To(Equal(2.0))
		Expect(buckets[0].Max).To(Equal(3.0))

		Expect(buckets[1].Count).To(Equal(4))
		Expect(buckets[1].Median).To(Equal(1.0))
		Expect(buckets[1].Std).To(BeZero())
	})
})

var _ = Describe("Backtest tear", func() {
	It("runs the simulation and renders performance statistics", func() {
		tear := mustCompute(tears.KindBacktest)
		Expect(tear.(*tears.BacktestTear).Result()).NotTo(BeNil())

		buf := &bytes.Buffer{}
		Expect(tear.Render(buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("CAGR"))
		Expect(buf.String()).To(ContainSubstring("Cumulative Return"))
	})
})

var _ = Describe("IC tear", func() {
	It("correlates factor values with forward returns", func() {
		tear := mustCompute(tears.KindIC)
		series := tear.(*tears.ICTear).Series()

		// the trailing holding-period rows have no forward window
		Expect(series.Len()).To(Equal(2))
		ic := series.Col("correlation")
		Expect(ic[0]).To(BeNumerically("~", 0.5, 1e-9))
		Expect(ic[1]).To(BeNumerically("~", -math.Sqrt(3)/2, 1e-9))
	})

	It("fails when the holding period spans the whole history", func() {
		in := fixtureInputs()
		in.Aligned.HoldingPeriod = 4
		tear, err := tears.New(tears.KindIC, in)
		Expect(err).To(BeNil())
		Expect(tear.Compute()).To(MatchError(tears.ErrShortHistory))
	})
})

var _ = Describe("Turnover tear", func() {
	It("reports zero turnover for constant bucket membership", func() {
		tear := mustCompute(tears.KindTurnover)
		turnover := tear.(*tears.TurnoverTear).Turnover()

		Expect(turnover.Len()).To(Equal(2))
		Expect(turnover.ColNames).To(ConsistOf(backtest.NtileColumn(1), backtest.NtileColumn(2)))
		for _, colName := range turnover.ColNames {
			for _, v := range turnover.Col(colName) {
				Expect(v).To(BeZero())
			}
		}
	})

	It("reports perfect autocorrelation for a constant factor", func() {
		tear := mustCompute(tears.KindTurnover)
		ac := tear.(*tears.TurnoverTear).Autocorrelation().Col("correlation")

		Expect(math.IsNaN(ac[0])).To(BeTrue())
		Expect(math.IsNaN(ac[1])).To(BeTrue())
		Expect(ac[2]).To(BeNumerically("~", 1.0, 1e-12))
		Expect(ac[3]).To(BeNumerically("~", 1.0, 1e-12))
	})
})

var _ = Describe("Tilts tear", func() {
	It("measures group exposure against the universe share", func() {
		tear := mustCompute(tears.KindTilts)
		tilts := tear.(*tears.TiltsTear)

		long := tilts.Tilt(backtest.NtileColumn(1))
		Expect(long.Col("tech")[0]).To(BeNumerically("~", 1.0/3, 1e-12))
		Expect(long.Col("fin")[0]).To(BeNumerically("~", -1.0/3, 1e-12))

		short := tilts.Tilt(backtest.NtileColumn(2))
		Expect(short.Col("fin")[0]).To(BeNumerically("~", 2.0/3, 1e-12))

		longShort := tilts.Tilt(tears.LongShortColumn)
		Expect(longShort.Col("tech")[0]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(longShort.Col("fin")[0]).To(BeNumerically("~", -0.5, 1e-12))
	})

	It("renders display names", func() {
		tear := mustCompute(tears.KindTilts)
		buf := &bytes.Buffer{}
		Expect(tear.Render(buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Technology"))
		Expect(buf.String()).To(ContainSubstring("Financials"))
	})

	It("requires a group provider", func() {
		in := fixtureInputs()
		in.Groups = nil
		tear, err := tears.New(tears.KindTilts, in)
		Expect(err).To(BeNil())
		Expect(tear.Compute()).To(MatchError(tears.ErrNoGroups))
	})
})

func mustCompute(kind tears.Kind) tears.Tear {
	tear, err := tears.New(kind, fixtureInputs())
	Expect(err).To(BeNil())
	Expect(tear.Compute()).To(Succeed())
	return tear
}
