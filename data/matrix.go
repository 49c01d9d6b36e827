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

package data

import (
	"context"
	"time"

	"github.com/factorlab/ntiles/dataframe"
)

// Matrix is a PricingProvider backed by an in-memory return matrix, e.g. one
// loaded from a CSV file
type Matrix struct {
	returns *dataframe.DataFrame
}

// NewMatrix wraps an already computed simple-return matrix; the matrix is
// copied so later caller mutations cannot reach the provider
func NewMatrix(returns *dataframe.DataFrame) *Matrix {
	return &Matrix{returns: returns.Copy()}
}

// Returns restricts the matrix to the requested assets and date range
func (m *Matrix) Returns(_ context.Context, assets []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	out := m.returns.Trim(begin, end).Select(assets...)
	return out.Copy(), nil
}

// Assets lists the matrix's column names
func (m *Matrix) Assets(_ context.Context) ([]string, error) {
	assets := make([]string, len(m.returns.ColNames))
	copy(assets, m.returns.ColNames)
	return assets, nil
}

// Periods lists the matrix's dates within [begin, end]
func (m *Matrix) Periods(_ context.Context, begin, end time.Time) ([]time.Time, error) {
	trimmed := m.returns.Trim(begin, end)
	periods := make([]time.Time, len(trimmed.Dates))
	copy(periods, trimmed.Dates)
	return periods, nil
}
