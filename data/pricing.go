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
	"encoding/binary"
	"math"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/factorlab/ntiles/dataframe"
)

// DefaultCacheSize is the number of (assets, range) query results the
// pricing portal keeps in memory
const DefaultCacheSize = 64

// Database loads end-of-day prices from the eod table and converts them to
// simple returns. Query results are cached per (assets, range) key; cache
// hits are deep-copied before being handed out.
type Database struct {
	conn  PgxIface
	cache *lru.Cache
}

// NewDatabase creates a pricing portal over an established connection; pass
// nil to use the package pool
func NewDatabase(conn PgxIface) (*Database, error) {
	if conn == nil {
		conn = pool
	}

	cache, err := lru.New(DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	return &Database{
		conn:  conn,
		cache: cache,
	}, nil
}

// Returns loads adjusted closing prices for the assets over [begin, end] and
// converts them to simple returns: one-period percent change with the first
// row dropped and missing changes treated as a flat 0.0 return.
func (db *Database) Returns(ctx context.Context, assets []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}

	key := cacheKey(assets, begin, end)
	if cached, ok := db.cache.Get(key); ok {
		return cached.(*dataframe.DataFrame).Copy(), nil
	}

	rows, err := db.conn.Query(ctx,
		"SELECT event_date, ticker, adj_close FROM eod WHERE ticker = ANY($1) AND event_date BETWEEN $2 AND $3 ORDER BY event_date ASC, ticker ASC",
		assets, begin, end)
	if err != nil {
		log.Warn().Stack().Err(err).Msg("eod price query failed")
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	prices := make(map[string]map[int64]float64, len(assets))

	for rows.Next() {
		var eventDate time.Time
		var ticker string
		var adjClose float64

		if err := rows.Scan(&eventDate, &ticker, &adjClose); err != nil {
			log.Error().Stack().Err(err).Msg("eod price row scan failed")
			return nil, err
		}

		if len(dates) == 0 || !dates[len(dates)-1].Equal(eventDate) {
			dates = append(dates, eventDate)
		}

		if _, ok := prices[ticker]; !ok {
			prices[ticker] = make(map[int64]float64)
		}
		prices[ticker][eventDate.Unix()] = adjClose
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(dates) == 0 {
		return nil, ErrNoPricesFound
	}

	tickers := make([]string, 0, len(prices))
	for ticker := range prices {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	priceFrame := dataframe.New(dates, tickers)
	for colIdx, ticker := range tickers {
		for rowIdx, dt := range dates {
			if v, ok := prices[ticker][dt.Unix()]; ok {
				priceFrame.Vals[colIdx][rowIdx] = v
			}
		}
	}

	returns := priceFrame.PctChange(1).Slice(1, priceFrame.Len())
	for colIdx := range returns.Vals {
		for rowIdx, v := range returns.Vals[colIdx] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				returns.Vals[colIdx][rowIdx] = 0
			}
		}
	}

	db.cache.Add(key, returns.Copy())
	return returns, nil
}

// Assets lists every ticker present in the eod table
func (db *Database) Assets(ctx context.Context) ([]string, error) {
	rows, err := db.conn.Query(ctx, "SELECT DISTINCT ticker FROM eod ORDER BY ticker")
	if err != nil {
		log.Warn().Stack().Err(err).Msg("eod asset query failed")
		return nil, err
	}
	defer rows.Close()

	assets := make([]string, 0)
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, err
		}
		assets = append(assets, ticker)
	}

	return assets, rows.Err()
}

// Periods lists the trading dates present in the eod table within [begin, end]
func (db *Database) Periods(ctx context.Context, begin, end time.Time) ([]time.Time, error) {
	rows, err := db.conn.Query(ctx,
		"SELECT DISTINCT event_date FROM eod WHERE event_date BETWEEN $1 AND $2 ORDER BY event_date",
		begin, end)
	if err != nil {
		log.Warn().Stack().Err(err).Msg("eod period query failed")
		return nil, err
	}
	defer rows.Close()

	periods := make([]time.Time, 0)
	for rows.Next() {
		var dt time.Time
		if err := rows.Scan(&dt); err != nil {
			return nil, err
		}
		periods = append(periods, dt)
	}

	return periods, rows.Err()
}

// cacheKey hashes the identity of a query so equal requests share one cache
// slot
func cacheKey(assets []string, begin, end time.Time) [32]byte {
	sorted := make([]string, len(assets))
	copy(sorted, assets)
	sort.Strings(sorted)

	h := blake3.New()
	buf := make([]byte, 8)

	binary.BigEndian.PutUint64(buf, uint64(begin.Unix()))
	h.Write(buf)
	binary.BigEndian.PutUint64(buf, uint64(end.Unix()))
	h.Write(buf)
	for _, asset := range sorted {
		h.Write([]byte(asset))
		h.Write([]byte{0})
	}

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
