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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/factorlab/ntiles/dataframe"
	"github.com/factorlab/ntiles/factor"
)

const csvDateFormat = "2006-01-02"

// ReadFactorCSV loads factor observations from a long-format CSV file with a
// `date,asset,value` header. An empty or non-numeric value cell becomes a
// null (NaN) observation, which the ranking step later drops and tallies.
func ReadFactorCSV(path string) ([]factor.Observation, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = 3

	// header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCSV
		}
		return nil, err
	}

	obs := make([]factor.Observation, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse(csvDateFormat, record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrMalformedCSV, record[0])
		}

		value := math.NaN()
		if record[2] != "" {
			if v, err := strconv.ParseFloat(record[2], 64); err == nil {
				value = v
			}
		}

		obs = append(obs, factor.Observation{
			Date:    date,
			AssetID: record[1],
			Value:   value,
		})
	}

	if len(obs) == 0 {
		return nil, ErrEmptyCSV
	}

	return obs, nil
}

// ReadReturnsCSV loads a wide-format simple-return matrix from a CSV file
// whose first column is the date and whose remaining header cells are asset
// ids. Empty cells become 0.0 returns so the matrix stays dense.
func ReadReturnsCSV(path string) (*dataframe.DataFrame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCSV
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: returns file needs a date column and at least one asset column", ErrMalformedCSV)
	}

	assets := header[1:]
	dates := make([]time.Time, 0)
	cols := make([][]float64, len(assets))

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse(csvDateFormat, record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrMalformedCSV, record[0])
		}
		dates = append(dates, date)

		for colIdx, cell := range record[1:] {
			v := 0.0
			if cell != "" {
				v, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad return %q", ErrMalformedCSV, cell)
				}
			}
			cols[colIdx] = append(cols[colIdx], v)
		}
	}

	if len(dates) == 0 {
		return nil, ErrEmptyCSV
	}

	return &dataframe.DataFrame{
		Dates:    dates,
		ColNames: assets,
		Vals:     cols,
	}, nil
}

// ReadGroupsCSV loads an asset → group mapping from a CSV file with an
// `asset,group` header
func ReadGroupsCSV(path string) (*StaticGroups, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = 2

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCSV
		}
		return nil, err
	}

	byAsset := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		byAsset[record[0]] = record[1]
	}

	if len(byAsset) == 0 {
		return nil, ErrEmptyCSV
	}

	return NewStaticGroups(byAsset, nil), nil
}
