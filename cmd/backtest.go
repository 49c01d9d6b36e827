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

package cmd

import (
	"context"
	"os"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/data"
	"github.com/factorlab/ntiles/engine"
	"github.com/factorlab/ntiles/factor"
	"github.com/factorlab/ntiles/tears"
)

var (
	factorPath    string
	returnsPath   string
	groupsPath    string
	numNtiles     int
	holdingPeriod int
	longShort     bool
	marketNeutral bool
	showUniverse  bool
	weightCap     float64
	tearNames     []string
	jsonPath      string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&factorPath, "factor", "", "factor observation CSV file (date,asset,value)")
	backtestCmd.MarkFlagRequired("factor")
	backtestCmd.Flags().StringVar(&returnsPath, "returns", "", "simple-return matrix CSV file; when omitted returns are loaded from the database")
	backtestCmd.Flags().StringVar(&groupsPath, "groups", "", "asset group CSV file (asset,group); enables the tilts tear")
	backtestCmd.Flags().IntVar(&numNtiles, "ntiles", 5, "number of quantile buckets")
	backtestCmd.Flags().IntVar(&holdingPeriod, "holding-period", 21, "holding period in trading days (minimum 2)")
	backtestCmd.Flags().BoolVar(&longShort, "long-short", true, "compute long-short spread series")
	backtestCmd.Flags().BoolVar(&marketNeutral, "market-neutral", false, "subtract the universe return from each bucket")
	backtestCmd.Flags().BoolVar(&showUniverse, "show-universe", false, "include the universe series in output")
	backtestCmd.Flags().Float64Var(&weightCap, "weight-cap", backtest.DefaultWeightCap, "maximum daily weight per asset")
	backtestCmd.Flags().StringSliceVar(&tearNames, "tears", nil, "tear sheets to run (inspection,backtest,ic,turnover,tilts); default all applicable")
	backtestCmd.Flags().StringVar(&jsonPath, "json", "", "write simulation result as JSON to the given file")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a factor backtest and print tear sheets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		obs, err := data.ReadFactorCSV(factorPath)
		if err != nil {
			log.Fatal().Err(err).Str("File", factorPath).Msg("could not load factor observations")
		}

		var groups data.GroupProvider
		if groupsPath != "" {
			g, err := data.ReadGroupsCSV(groupsPath)
			if err != nil {
				log.Fatal().Err(err).Str("File", groupsPath).Msg("could not load asset groups")
			}
			groups = g
		}

		var pricing data.PricingProvider
		if returnsPath != "" {
			matrix, err := data.ReadReturnsCSV(returnsPath)
			if err != nil {
				log.Fatal().Err(err).Str("File", returnsPath).Msg("could not load return matrix")
			}
			pricing = data.NewMatrix(matrix)
		} else {
			if err := data.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not connect to pricing database")
			}
			db, err := data.NewDatabase(nil)
			if err != nil {
				log.Fatal().Err(err).Msg("could not create pricing portal")
			}
			pricing = db
		}

		assets, begin, end := factorSpan(obs)
		returns, err := pricing.Returns(ctx, assets, begin, end)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load returns")
		}

		cfg := backtest.Config{
			Ntiles:          numNtiles,
			HoldingPeriod:   holdingPeriod,
			LongShort:       longShort,
			MarketNeutral:   marketNeutral,
			IncludeUniverse: showUniverse,
			WeightCap:       weightCap,
		}

		run := engine.NewRun(cfg, groups)
		aligned, err := run.ValidateAndAlign(ctx, obs, returns)
		if err != nil {
			log.Fatal().Err(err).Msg("input validation failed")
		}

		kinds, err := selectTears(groups != nil)
		if err != nil {
			log.Fatal().Err(err).Msg("unknown tear requested")
		}

		if err := run.RunTears(ctx, aligned, kinds, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("tear sheet failed")
		}

		if jsonPath != "" {
			if err := exportJSON(ctx, run, aligned); err != nil {
				log.Fatal().Err(err).Str("File", jsonPath).Msg("could not export result")
			}
		}
	},
}

// factorSpan extracts the unique assets and the date range covered by a
// factor series
func factorSpan(obs []factor.Observation) ([]string, time.Time, time.Time) {
	seen := make(map[string]struct{})
	var begin, end time.Time

	for _, o := range obs {
		seen[o.AssetID] = struct{}{}
		if begin.IsZero() || o.Date.Before(begin) {
			begin = o.Date
		}
		if o.Date.After(end) {
			end = o.Date
		}
	}

	assets := make([]string, 0, len(seen))
	for asset := range seen {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	return assets, begin, end
}

func selectTears(haveGroups bool) ([]tears.Kind, error) {
	if len(tearNames) == 0 {
		kinds := make([]tears.Kind, 0, len(tears.All()))
		for _, kind := range tears.All() {
			if kind == tears.KindTilts && !haveGroups {
				continue
			}
			kinds = append(kinds, kind)
		}
		return kinds, nil
	}

	kinds := make([]tears.Kind, 0, len(tearNames))
	for _, name := range tearNames {
		kind, err := tears.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

type jsonSeries struct {
	Dates  []string             `json:"dates"`
	Series map[string][]float64 `json:"series"`
}

func exportJSON(ctx context.Context, run *engine.Run, aligned *factor.AlignedInputs) error {
	result, err := run.Simulate(ctx, aligned)
	if err != nil {
		return err
	}

	out := jsonSeries{
		Dates:  make([]string, result.Returns.Len()),
		Series: make(map[string][]float64, result.Returns.ColCount()),
	}
	for idx, dt := range result.Returns.Dates {
		out.Dates[idx] = dt.Format("2006-01-02")
	}
	for colIdx, colName := range result.Returns.ColNames {
		out.Series[colName] = result.Returns.Vals[colIdx]
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(jsonPath, encoded, 0644)
}
