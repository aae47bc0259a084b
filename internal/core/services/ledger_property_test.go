package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/repositories/memory"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

const propertyPostings = 12

// propertyLedger is a fresh engine with one account of every type.
// Opening balances, given in cents, are assigned to the accounts in type order.
type propertyLedger struct {
	ctx      context.Context
	accounts portssvc.AccountSvcFacade
	journals portssvc.JournalSvcFacade
	posting  portssvc.PostingSvc
	ledger   portssvc.LedgerQuerySvc
	ids      []string
}

func newPropertyLedger(openingCents ...int64) (*propertyLedger, error) {
	store := memory.NewStore()
	now := time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	l := &propertyLedger{
		ctx:      context.Background(),
		accounts: services.NewAccountService(store, store, services.WithAccountClock(clock)),
		journals: services.NewJournalService(store, store, services.WithJournalClock(clock)),
		posting:  services.NewPostingService(store, store, services.WithPostingClock(clock)),
		ledger:   services.NewLedgerService(store, store, services.WithLedgerClock(clock)),
	}
	for i, t := range domain.AllAccountTypes {
		opening := decimal.Zero
		if i < len(openingCents) {
			opening = decimal.New(openingCents[i], -2)
		}
		acc, err := l.accounts.CreateAccount(l.ctx, dto.CreateAccountRequest{
			Code:           string(rune('A' + i)),
			Name:           string(t),
			AccountType:    t,
			OpeningBalance: opening,
		}, testActor)
		if err != nil {
			return nil, err
		}
		l.ids = append(l.ids, acc.AccountID)
	}
	return l, nil
}

// postPair posts a two-line entry moving cents from one account to another.
func (l *propertyLedger) postPair(i int, from, offset int, cents int64) (*domain.JournalEntry, error) {
	n := len(l.ids)
	debitID := l.ids[from%n]
	creditID := l.ids[(from+1+offset%(n-1))%n]
	amount := decimal.New(cents, -2)
	draft, err := l.journals.CreateDraft(l.ctx, dto.CreateDraftRequest{
		Date:        time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC),
		Description: "generated",
		Lines: []dto.JournalLineRequest{
			{AccountID: debitID, Debit: amount},
			{AccountID: creditID, Credit: amount},
		},
	}, testActor)
	if err != nil {
		return nil, err
	}
	return l.posting.Post(l.ctx, draft.EntryID, testActor)
}

func (l *propertyLedger) balances() (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(l.ids))
	for _, id := range l.ids {
		b, err := l.accounts.GetBalance(l.ctx, id, nil)
		if err != nil {
			return nil, err
		}
		result[id] = b
	}
	return result, nil
}

func postingGens() []gopter.Gen {
	return []gopter.Gen{
		gen.SliceOfN(propertyPostings, gen.IntRange(0, 7)),
		gen.SliceOfN(propertyPostings, gen.IntRange(0, 6)),
		gen.SliceOfN(propertyPostings, gen.Int64Range(1, 10_000_000)),
	}
}

func TestTrialBalanceAlwaysBalances(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("posting balanced entries keeps the trial balance balanced", prop.ForAll(
		func(froms []int, offsets []int, cents []int64) bool {
			l, err := newPropertyLedger()
			if err != nil {
				return false
			}
			for i := range min(len(froms), len(offsets), len(cents)) {
				if _, err := l.postPair(i, froms[i], offsets[i], cents[i]); err != nil {
					return false
				}
			}
			tb, err := l.ledger.TrialBalance(l.ctx, nil)
			if err != nil {
				return false
			}
			return tb.IsBalanced && tb.TotalDebit.Equal(tb.TotalCredit)
		},
		postingGens()...,
	))

	properties.TestingRun(t)
}

func TestOpeningBalancesKeepTrialBalanceBalanced(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	gens := append([]gopter.Gen{
		gen.SliceOfN(len(domain.AllAccountTypes), gen.Int64Range(-10_000_000, 10_000_000)),
	}, postingGens()...)

	properties.Property("accounts opened with any balance leave the trial balance balanced", prop.ForAll(
		func(openings []int64, froms []int, offsets []int, cents []int64) bool {
			l, err := newPropertyLedger(openings...)
			if err != nil {
				return false
			}
			for i := range min(len(froms), len(offsets), len(cents)) {
				if _, err := l.postPair(i, froms[i], offsets[i], cents[i]); err != nil {
					return false
				}
			}
			tb, err := l.ledger.TrialBalance(l.ctx, nil)
			if err != nil || !tb.IsBalanced || !tb.TotalDebit.Equal(tb.TotalCredit) {
				return false
			}
			opening := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
			before, err := l.ledger.TrialBalance(l.ctx, &opening)
			if err != nil || !before.TotalDebit.Equal(before.TotalCredit) {
				return false
			}
			drift, err := l.accounts.VerifyBalances(l.ctx)
			return err == nil && len(drift) == 0
		},
		gens...,
	))

	properties.TestingRun(t)
}

func TestCachedBalancesMatchReplay(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("cached balances equal a replay of the posted log", prop.ForAll(
		func(froms []int, offsets []int, cents []int64) bool {
			l, err := newPropertyLedger()
			if err != nil {
				return false
			}
			for i := range min(len(froms), len(offsets), len(cents)) {
				entry, err := l.postPair(i, froms[i], offsets[i], cents[i])
				if err != nil {
					return false
				}
				// Reverse every third posting so REVERSED entries are part of the replay.
				if i%3 == 0 {
					if _, err := l.posting.Reverse(l.ctx, entry.EntryID, nil, testActor); err != nil {
						return false
					}
				}
			}
			drift, err := l.accounts.VerifyBalances(l.ctx)
			return err == nil && len(drift) == 0
		},
		postingGens()...,
	))

	properties.TestingRun(t)
}

func TestReversalRestoresBalances(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("post then reverse leaves every balance unchanged", prop.ForAll(
		func(froms []int, offsets []int, cents []int64) bool {
			l, err := newPropertyLedger()
			if err != nil {
				return false
			}
			last := min(len(froms), len(offsets), len(cents)) - 1
			if last < 0 {
				return true
			}
			for i := 0; i < last; i++ {
				if _, err := l.postPair(i, froms[i], offsets[i], cents[i]); err != nil {
					return false
				}
			}
			before, err := l.balances()
			if err != nil {
				return false
			}

			entry, err := l.postPair(last, froms[last], offsets[last], cents[last])
			if err != nil {
				return false
			}
			if _, err := l.posting.Reverse(l.ctx, entry.EntryID, nil, testActor); err != nil {
				return false
			}

			after, err := l.balances()
			if err != nil {
				return false
			}
			for id, b := range before {
				if !b.Equal(after[id]) {
					return false
				}
			}
			return true
		},
		postingGens()...,
	))

	properties.TestingRun(t)
}
