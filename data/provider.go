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

// Package data provides the external collaborators the analytics engine runs
// against: pricing sources that produce dense simple-return matrices and
// group sources that classify assets. Every provider hands out fresh copies;
// callers may mutate results freely without corrupting a shared cache.
package data

import (
	"context"
	"time"

	"github.com/factorlab/ntiles/dataframe"
)

// PricingProvider supplies dense simple-return matrices for a set of assets
// over a date range. Implementations own their missing-data policy; the
// matrices they return are fully populated (no NaN cells) so downstream
// arithmetic never has to guess.
type PricingProvider interface {
	// Returns produces a date × asset simple-return matrix covering
	// [begin, end]. Assets the provider knows nothing about are omitted
	// from the result.
	Returns(ctx context.Context, assets []string, begin, end time.Time) (*dataframe.DataFrame, error)

	// Assets lists every asset id the provider has pricing for
	Assets(ctx context.Context) ([]string, error)

	// Periods lists the trading dates the provider has pricing for within
	// [begin, end]
	Periods(ctx context.Context, begin, end time.Time) ([]time.Time, error)
}

// GroupProvider classifies assets into groups (e.g. sectors) for exposure
// analysis
type GroupProvider interface {
	// Group returns the group label for an asset; ok is false when the
	// asset is unclassified
	Group(assetID string) (group string, ok bool)

	// Name returns the display name for a group label; unknown labels echo
	// back unchanged
	Name(group string) string

	// Groups lists every group label, sorted
	Groups() []string
}
