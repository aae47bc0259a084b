package accounting

import (
	"fmt"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when comparing report column totals.
var Epsilon = decimal.New(1, -domain.CurrencyPlaces)

// SignedAmount returns the effect a line has on the balance of an account of the given type.
//
//	DEBIT to ASSET/EXPENSE/COGS/OTHER_EXPENSE       -> Positive (+)
//	CREDIT to ASSET/EXPENSE/COGS/OTHER_EXPENSE      -> Negative (-)
//	DEBIT to LIABILITY/EQUITY/REVENUE/OTHER_INCOME  -> Negative (-)
//	CREDIT to LIABILITY/EQUITY/REVENUE/OTHER_INCOME -> Positive (+)
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	return SignedMovement(line.DebitAmount, line.CreditAmount, accountType)
}

// SignedMovement applies the sign convention to an arbitrary debit/credit pair.
func SignedMovement(debit, credit decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
	net := debit.Sub(credit)
	if accountType.IsDebitNormal() {
		return net, nil
	}
	return net.Neg(), nil
}

// Totals sums both sides of a set of lines.
func Totals(lines []domain.JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.DebitAmount)
		credit = credit.Add(l.CreditAmount)
	}
	return debit, credit
}

// IsBalanced reports whether debit and credit agree within Epsilon.
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThan(Epsilon)
}

// OpeningOffset returns the signed opening balance an account of offsetType must carry so that
// an opening balance on an account of accountType leaves total debits equal to total credits.
func OpeningOffset(opening decimal.Decimal, accountType, offsetType domain.AccountType) (decimal.Decimal, error) {
	netDebit, err := SignedMovement(opening, decimal.Zero, accountType)
	if err != nil {
		return decimal.Zero, err
	}
	return SignedMovement(decimal.Zero, netDebit, offsetType)
}

// BalanceColumns places a signed balance on the account's normal side.
// A negative balance flips to the opposite column.
func BalanceColumns(balance decimal.Decimal, accountType domain.AccountType) (debit, credit decimal.Decimal) {
	debitSide := accountType.IsDebitNormal()
	if balance.IsNegative() {
		debitSide = !debitSide
		balance = balance.Neg()
	}
	if debitSide {
		return balance, decimal.Zero
	}
	return decimal.Zero, balance
}

// NetDeltas folds an entry's lines into one signed delta per account, in first-seen order.
// Accounts whose lines cancel out still get a (zero) delta so their version is checked.
func NetDeltas(lines []domain.JournalLine, accounts map[string]domain.Account) ([]domain.BalanceDelta, error) {
	index := make(map[string]int, len(lines))
	deltas := make([]domain.BalanceDelta, 0, len(lines))
	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account %s not resolved for line %d", line.AccountID, line.LineNumber)
		}
		signed, err := SignedAmount(line, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.LineNumber, err)
		}
		if i, seen := index[line.AccountID]; seen {
			deltas[i].Delta = deltas[i].Delta.Add(signed)
			continue
		}
		index[line.AccountID] = len(deltas)
		deltas = append(deltas, domain.BalanceDelta{
			AccountID:       acc.AccountID,
			Delta:           signed,
			ExpectedVersion: acc.Version,
		})
	}
	return deltas, nil
}
