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

package factor

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyFactor          = errors.New("factor series has no observations")
	ErrMalformedObservation = errors.New("factor observation must have both a date and an asset id")
	ErrDuplicateObservation = errors.New("multiple factor observations for a single asset on a single date")
	ErrNtileCount           = errors.New("ntile count must be at least 1")
)

// Observation is a single factor score: one value for one asset on one date
type Observation struct {
	Date    time.Time
	AssetID string
	Value   float64
}

// Validate checks that a factor series meets the requirements to run a
// backtest: it must be non-empty, every observation must carry a date and an
// asset id, and there can be at most one observation per (date, asset) pair.
// The first violation found is returned; a valid series returns nil.
func Validate(obs []Observation) error {
	if len(obs) == 0 {
		return ErrEmptyFactor
	}

	seen := make(map[obsKey]struct{}, len(obs))
	for _, o := range obs {
		if o.Date.IsZero() || o.AssetID == "" {
			return fmt.Errorf("%w: date=%s asset=%q", ErrMalformedObservation, o.Date.Format("2006-01-02"), o.AssetID)
		}

		k := obsKey{date: o.Date.Unix(), asset: o.AssetID}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: date=%s asset=%q", ErrDuplicateObservation, o.Date.Format("2006-01-02"), o.AssetID)
		}
		seen[k] = struct{}{}
	}

	return nil
}

type obsKey struct {
	date  int64
	asset string
}
