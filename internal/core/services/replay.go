package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// replayBalances rebuilds account balances from opening balances plus every posted line dated on or before asOf.
// A nil asOf replays the whole log. The cached balances are never read or written.
func replayBalances(ctx context.Context, lines portsrepo.PostedLineReader, accounts []domain.Account, asOf *time.Time) (map[string]decimal.Decimal, error) {
	movements, err := lines.SumPostedMovements(ctx, nil, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted movements: %w", err)
	}
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, acc := range accounts {
		m, ok := movements[acc.AccountID]
		if !ok {
			balances[acc.AccountID] = acc.OpeningBalance
			continue
		}
		signed, err := accounting.SignedMovement(m.Debit, m.Credit, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Code, err)
		}
		balances[acc.AccountID] = acc.OpeningBalance.Add(signed)
	}
	return balances, nil
}

// cachedBalances reads the materialized balance of every account.
func cachedBalances(accounts []domain.Account) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, acc := range accounts {
		balances[acc.AccountID] = acc.Balance
	}
	return balances
}
