package accounting

import (
	"fmt"

	"github.com/lepetitpoucetlyon-sketch/restaurant-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntryBalance checks the fundamental identity for a set of journal
// lines: every amount is positive with at most maxPlaces decimal places, and
// the debit total equals the credit total exactly.
func ValidateEntryBalance(lines []domain.JournalLine, maxPlaces int32) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(lines))
	}

	debits := decimal.Zero
	credits := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s, got %s", line.AccountCode, line.Amount)
		}
		if line.Amount.Exponent() < -maxPlaces {
			return fmt.Errorf("line amount %s for account %s exceeds the ledger precision of %d decimal places", line.Amount, line.AccountCode, maxPlaces)
		}
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("debit total %s does not equal credit total %s", debits, credits)
	}
	return nil
}

// FoldBalance computes an account balance by folding signed line amounts in
// the order given. Callers must pass lines already ordered by
// (entry date, piece number); the fold itself is a pure function of that
// sequence.
func FoldBalance(lines []domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, line := range lines {
		signed, err := line.SignedAmount(accountType)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}

// SignedBankAmount converts a journal line on a bank account to the signed
// amount a bank statement would show for the same cash movement: debits to
// the bank account are money in (+), credits are money out (-).
func SignedBankAmount(line domain.JournalLine) decimal.Decimal {
	if line.Side == domain.Debit {
		return line.Amount
	}
	return line.Amount.Neg()
}
