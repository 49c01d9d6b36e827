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

// Package engine orchestrates a full analytics run as an explicit two-phase
// API: ValidateAndAlign front-loads every input and configuration check and
// produces aligned matrices; Simulate and RunTears consume them. Nothing here
// reads global state; all configuration arrives in the Run struct.
package engine

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/data"
	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/factor"
	"github.com/factorlab/ntiles/tears"
)

// Run identifies one analytics invocation and carries its configuration.
// The ID correlates all log lines produced by the run.
type Run struct {
	ID     uuid.UUID
	Config backtest.Config
	Groups data.GroupProvider

	logger zerolog.Logger
}

// NewRun assigns a fresh run ID
func NewRun(cfg backtest.Config, groups data.GroupProvider) *Run {
	id := uuid.New()
	return &Run{
		ID:     id,
		Config: cfg,
		Groups: groups,
		logger: log.With().Str("RunID", id.String()).Logger(),
	}
}

// ValidateAndAlign is phase one: it validates the raw factor series and the
// run configuration, ranks observations into buckets and aligns the bucket
// and factor matrices with the return matrix. Configuration errors surface
// here, before any simulation work starts.
func (r *Run) ValidateAndAlign(ctx context.Context, obs []factor.Observation, returns *dataframe.DataFrame) (*factor.AlignedInputs, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := factor.Validate(obs); err != nil {
		r.logger.Error().Err(err).Msg("factor series failed validation")
		return nil, err
	}

	ranked, err := factor.Rank(obs, r.Config.Ntiles)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aligned, err := factor.Align(ranked, returns, r.Config.HoldingPeriod)
	if err != nil {
		r.logger.Error().Err(err).Msg("could not align factor with return matrix")
		return nil, err
	}

	r.logger.Info().
		Int("Observations", aligned.Loss.TotalObservations).
		Int("LostNullFactor", aligned.Loss.NullFactor).
		Int("LostNoDateOverlap", aligned.Loss.NoDateOverlap).
		Int("LostNoReturnData", aligned.Loss.NoReturnData).
		Float64("LostFrac", aligned.Loss.LostFrac()).
		Msg("aligned factor with return matrix")

	return aligned, nil
}

// Simulate is phase two: it runs the bucket portfolio simulation over
// aligned inputs
func (r *Run) Simulate(ctx context.Context, aligned *factor.AlignedInputs) (*backtest.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := backtest.Run(aligned.NtileMatrix, aligned.Returns, r.Config)
	if err != nil {
		r.logger.Error().Err(err).Msg("simulation failed")
		return nil, err
	}

	r.logger.Info().Int("Ntiles", r.Config.Ntiles).Int("HoldingPeriod", r.Config.HoldingPeriod).
		Int("Periods", result.Returns.Len()).Msg("simulation complete")

	return result, nil
}

// RunTears computes and renders the requested tear sheets in order, writing
// each to w with its kind as a section heading
func (r *Run) RunTears(ctx context.Context, aligned *factor.AlignedInputs, kinds []tears.Kind, w io.Writer) error {
	in := tears.Inputs{
		Aligned: aligned,
		Sim:     r.Config,
		Groups:  r.Groups,
	}

	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return err
		}

		tear, err := tears.New(kind, in)
		if err != nil {
			return err
		}

		if err := tear.Compute(); err != nil {
			r.logger.Error().Err(err).Stringer("Kind", kind).Msg("tear computation failed")
			return err
		}

		if _, err := io.WriteString(w, "\n== "+kind.String()+" ==\n\n"); err != nil {
			return err
		}
		if err := tear.Render(w); err != nil {
			return err
		}
	}

	return nil
}
