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

import "sort"

// StaticGroups is an in-memory GroupProvider built from plain maps
type StaticGroups struct {
	byAsset map[string]string
	names   map[string]string
}

// NewStaticGroups builds a group provider from an asset → group label map and
// an optional group label → display name map
func NewStaticGroups(byAsset map[string]string, names map[string]string) *StaticGroups {
	g := &StaticGroups{
		byAsset: make(map[string]string, len(byAsset)),
		names:   make(map[string]string, len(names)),
	}
	for asset, group := range byAsset {
		g.byAsset[asset] = group
	}
	for group, name := range names {
		g.names[group] = name
	}
	return g
}

func (g *StaticGroups) Group(assetID string) (string, bool) {
	group, ok := g.byAsset[assetID]
	return group, ok
}

func (g *StaticGroups) Name(group string) string {
	if name, ok := g.names[group]; ok {
		return name
	}
	return group
}

func (g *StaticGroups) Groups() []string {
	seen := make(map[string]struct{}, len(g.byAsset))
	for _, group := range g.byAsset {
		seen[group] = struct{}{}
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}
