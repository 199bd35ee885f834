/**
 * @description
 * This file contains the pure balance calculation used by the transfer engine.
 * It has no side effects and touches no storage: given a requested amount and
 * a tax rate it produces the tax-inclusive total the payer will be charged.
 *
 * @dependencies
 * - errors: Standard Go library.
 * - github.com/shopspring/decimal: Exact decimal arithmetic for money.
 */

package app

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ledgerPrecision is the ledger's minor-unit precision in decimal places.
const ledgerPrecision = 2

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTaxRate         = errors.New("tax rate must not be negative")
	ErrInvalidReceiver        = errors.New("sender and receiver must differ")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// ComputeTotalCharged returns amount * (1 + taxRate) rounded half-up to the
// ledger's 2-decimal precision. The rounding rule is fixed so repeated
// calculations never drift.
func ComputeTotalCharged(amount, taxRate decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	if taxRate.IsNegative() {
		return decimal.Zero, ErrInvalidTaxRate
	}

	total := amount.Mul(decimal.NewFromInt(1).Add(taxRate))
	return total.Round(ledgerPrecision), nil
}
