/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ledger

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxDescriptionLength is counted in characters, not bytes.
	MaxDescriptionLength = 255
	// MoneyScale is the number of fraction digits stored for every amount.
	MoneyScale = 2
)

// MaxMoney is the largest value a NUMERIC(15,2) column holds.
var MaxMoney = decimal.RequireFromString("9999999999999.99")

// Exponent bounds checked before any arithmetic. Rescaling a value such as
// 1e-20000000 to two places allocates a coefficient with millions of digits.
const (
	minAmountExponent = -(MoneyScale + 16)
	maxAmountExponent = 15
)

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	if exp := amount.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return fmt.Errorf("%w: amount is out of range", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidAmount, MoneyScale)
	}
	if amount.GreaterThan(MaxMoney) {
		return fmt.Errorf("%w: amount exceeds %s", ErrInvalidAmount, MaxMoney.StringFixed(MoneyScale))
	}
	return nil
}

func validateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters, maximum is %d", ErrDescriptionTooLong, n, MaxDescriptionLength)
	}
	return nil
}

func truncateDescription(description string) string {
	if utf8.RuneCountInString(description) <= MaxDescriptionLength {
		return description
	}
	runes := []rune(description)
	return string(runes[:MaxDescriptionLength])
}

// NormalizePage applies the history paging defaults and bounds.
func NormalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)
