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

package dataframe

import (
	"sort"
	"time"
)

// DataFrameMap is a keyed collection of dataframes, e.g. one weight matrix
// per portfolio bucket
type DataFrameMap map[string]*DataFrame

// SortedKeys returns the map keys in lexical order; map iteration order is
// otherwise unstable which makes rendered output non-deterministic
func (dfMap DataFrameMap) SortedKeys() []string {
	keys := make([]string, 0, len(dfMap))
	for k := range dfMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Trim calls DataFrame.Trim on each member and returns a new map
func (dfMap DataFrameMap) Trim(begin, end time.Time) DataFrameMap {
	out := make(DataFrameMap, len(dfMap))
	for k, df := range dfMap {
		out[k] = df.Trim(begin, end)
	}
	return out
}
