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

// Package tears builds diagnostic tear sheets over aligned factor inputs.
// Each tear is a two-step object: Compute runs the analytics and Render
// writes an ASCII report, so callers can compute once and render to several
// destinations (or consume the computed values programmatically and never
// render at all).
package tears

import (
	"errors"
	"io"

	"github.com/factorlab/ntiles/backtest"
	"github.com/factorlab/ntiles/data"
	"github.com/factorlab/ntiles/factor"
)

// Kind enumerates the available tear sheets
type Kind int

const (
	KindInspection Kind = iota
	KindBacktest
	KindIC
	KindTurnover
	KindTilts
)

func (k Kind) String() string {
	switch k {
	case KindInspection:
		return "inspection"
	case KindBacktest:
		return "backtest"
	case KindIC:
		return "ic"
	case KindTurnover:
		return "turnover"
	case KindTilts:
		return "tilts"
	}
	return "unknown"
}

var (
	ErrUnknownKind  = errors.New("unknown tear kind")
	ErrNotComputed  = errors.New("tear must be computed before rendering")
	ErrNoGroups     = errors.New("tilts tear requires a group provider")
	ErrShortHistory = errors.New("not enough rows remain after the holding period offset")
)

// Tear is one diagnostic report
type Tear interface {
	Compute() error
	Render(w io.Writer) error
}

// Inputs carries everything a tear may need. Groups is only consulted by the
// tilts tear.
type Inputs struct {
	Aligned *factor.AlignedInputs
	Sim     backtest.Config
	Groups  data.GroupProvider
}

var constructors = map[Kind]func(Inputs) Tear{
	KindInspection: func(in Inputs) Tear { return &InspectionTear{in: in} },
	KindBacktest:   func(in Inputs) Tear { return &BacktestTear{in: in} },
	KindIC:         func(in Inputs) Tear { return &ICTear{in: in} },
	KindTurnover:   func(in Inputs) Tear { return &TurnoverTear{in: in} },
	KindTilts:      func(in Inputs) Tear { return &TiltsTear{in: in} },
}

// New constructs the requested tear over the given inputs
func New(kind Kind, in Inputs) (Tear, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return ctor(in), nil
}

// All lists every tear kind in render order
func All() []Kind {
	return []Kind{KindInspection, KindBacktest, KindIC, KindTurnover, KindTilts}
}

// ParseKind maps a kind's string form back to the enum
func ParseKind(name string) (Kind, error) {
	for _, kind := range All() {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, ErrUnknownKind
}
