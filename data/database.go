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

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PgxIface is the subset of the pgx connection API the pricing portal needs;
// both pgxpool.Pool and pgxmock connections satisfy it
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var pool PgxIface

// SetPool overrides the package connection; tests install a pgxmock
// connection here
func SetPool(p PgxIface) {
	pool = p
}

// Pool returns the active database connection; Connect or SetPool must have
// been called first
func Pool() PgxIface {
	return pool
}

// Connect establishes the PostgreSQL connection pool from the viper key
// database.url
func Connect(ctx context.Context) error {
	url := viper.GetString("database.url")
	if url == "" {
		return ErrDatabaseURL
	}

	p, err := pgxpool.Connect(ctx, url)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to database")
		return err
	}

	pool = p
	return nil
}
