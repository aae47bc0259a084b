package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultLedgerPageSize = 50
	maxLedgerPageSize     = 500
)

// ledgerService answers read-only balance questions. It never mutates the cache.
type ledgerService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	postedLines portsrepo.PostedLineReader
}

// LedgerServiceOption is a functional option for configuring the ledger query service
type LedgerServiceOption func(*ledgerService)

// WithLedgerClock overrides the clock used to decide between cache and replay.
func WithLedgerClock(clock func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.clock = clock
	}
}

// NewLedgerService creates a new ledger query service with the provided options
func NewLedgerService(accountRepo portsrepo.AccountReader, postedLines portsrepo.PostedLineReader, options ...LedgerServiceOption) portssvc.LedgerQuerySvc {
	svc := &ledgerService{
		accountRepo: accountRepo,
		postedLines: postedLines,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerQuerySvc = (*ledgerService)(nil)

// balancesAsOf loads every account and its balance, from the cache for today or later, by replay otherwise.
func (s *ledgerService) balancesAsOf(ctx context.Context, asOf *time.Time) ([]domain.Account, map[string]decimal.Decimal, time.Time, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	today := s.Today()
	if !isHistorical(asOf, today) {
		reportDate := today
		if asOf != nil {
			reportDate = dateOnly(*asOf)
		}
		return accounts, cachedBalances(accounts), reportDate, nil
	}
	reportDate := dateOnly(*asOf)
	balances, err := replayBalances(ctx, s.postedLines, accounts, &reportDate)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return accounts, balances, reportDate, nil
}

// TrialBalance lists every active account, plus inactive ones still carrying a balance.
func (s *ledgerService) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	accounts, balances, reportDate, err := s.balancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to load balances for trial balance")
		return nil, err
	}

	tb := &domain.TrialBalance{
		AsOf:        reportDate,
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		balance := balances[acc.AccountID]
		if !acc.IsActive && balance.IsZero() {
			continue
		}
		debit, credit := accounting.BalanceColumns(balance, acc.AccountType)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountID:     acc.AccountID,
			AccountCode:   acc.Code,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			DebitBalance:  debit,
			CreditBalance: credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}
	tb.IsBalanced = accounting.IsBalanced(tb.TotalDebit, tb.TotalCredit)

	if !tb.IsBalanced {
		s.GetLogger(ctx).Warn("Trial balance does not balance",
			slog.String("as_of", reportDate.Format(time.DateOnly)),
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	return tb, nil
}

// AccountLedger pages through an account's posted lines with a running balance.
// Each page seeks past the token's ledger position and carries in the balance
// of everything before it, so no page reads the history it does not show.
func (s *ledgerService) AccountLedger(ctx context.Context, accountID string, from, to *time.Time, nextToken *string, limit int) (*domain.AccountLedgerPage, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	switch {
	case limit <= 0:
		limit = defaultLedgerPageSize
	case limit > maxLedgerPageSize:
		limit = maxLedgerPageSize
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var fromDate, toDate *time.Time
	if from != nil {
		d := dateOnly(*from)
		fromDate = &d
	}
	if to != nil {
		d := dateOnly(*to)
		toDate = &d
	}

	var after *domain.LedgerKey
	if nextToken != nil && *nextToken != "" {
		key, err := pagination.DecodeLedgerToken(*nextToken, accountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		if (fromDate != nil && key.EntryDate.Before(*fromDate)) || (toDate != nil && key.EntryDate.After(*toDate)) {
			return nil, fmt.Errorf("%w: pagination token does not match this ledger range", apperrors.ErrValidation)
		}
		after = &key
	}

	var prior domain.AccountMovement
	switch {
	case after != nil:
		prior, err = s.postedLines.SumPostedByAccount(ctx, accountID, nil, nil, after)
	case fromDate != nil:
		dayBefore := fromDate.AddDate(0, 0, -1)
		prior, err = s.postedLines.SumPostedByAccount(ctx, accountID, nil, &dayBefore, nil)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to sum prior ledger lines", slog.String("account_id", accountID))
		return nil, err
	}
	carried, err := accounting.SignedMovement(prior.Debit, prior.Credit, account.AccountType)
	if err != nil {
		return nil, err
	}

	// Fetch one extra line to learn whether another page exists
	lines, err := s.postedLines.ListPostedLinesByAccount(ctx, domain.LedgerQuery{
		AccountID: accountID,
		From:      fromDate,
		To:        toDate,
		After:     after,
		Limit:     limit + 1,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list posted lines", slog.String("account_id", accountID))
		return nil, err
	}
	hasMore := len(lines) > limit
	if hasMore {
		lines = lines[:limit]
	}

	page := &domain.AccountLedgerPage{
		AccountID:    account.AccountID,
		AccountCode:  account.Code,
		StartBalance: account.OpeningBalance.Add(carried),
		Lines:        make([]domain.LedgerLine, 0, len(lines)),
	}
	running := page.StartBalance
	for _, line := range lines {
		signed, err := accounting.SignedMovement(line.Debit, line.Credit, account.AccountType)
		if err != nil {
			return nil, err
		}
		running = running.Add(signed)
		line.RunningBalance = running
		page.Lines = append(page.Lines, line)
	}
	if hasMore {
		token := pagination.EncodeLedgerToken(accountID, page.Lines[len(page.Lines)-1].Key())
		page.NextToken = &token
	}
	return page, nil
}

func toAccountAmount(acc domain.Account, amount decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: amount}
}

func isIncome(t domain.AccountType) bool {
	return t == domain.Revenue || t == domain.OtherIncome
}

func isExpense(t domain.AccountType) bool {
	return t == domain.Expense || t == domain.CostOfGoodsSold || t == domain.OtherExpense
}

// BalanceSheet derives financial position from the same balances the trial balance uses.
// Income and expense balances not yet closed to retained earnings appear as current earnings.
func (s *ledgerService) BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	accounts, balances, reportDate, err := s.balancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to load balances for balance sheet")
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             reportDate,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrentEarnings:  decimal.Zero,
	}
	for _, acc := range accounts {
		balance := balances[acc.AccountID]
		switch {
		case isIncome(acc.AccountType):
			report.CurrentEarnings = report.CurrentEarnings.Add(balance)
			continue
		case isExpense(acc.AccountType):
			report.CurrentEarnings = report.CurrentEarnings.Sub(balance)
			continue
		}
		if balance.IsZero() {
			continue
		}
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, toAccountAmount(acc, balance))
			report.TotalAssets = report.TotalAssets.Add(balance)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, toAccountAmount(acc, balance))
			report.TotalLiabilities = report.TotalLiabilities.Add(balance)
		case domain.Equity:
			report.Equity = append(report.Equity, toAccountAmount(acc, balance))
			report.TotalEquity = report.TotalEquity.Add(balance)
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.CurrentEarnings)
	return report, nil
}

// ProfitAndLoss reports income and expense movement posted within [from, to]. Opening balances are excluded.
func (s *ledgerService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	fromDate, toDate := dateOnly(from), dateOnly(to)
	if fromDate.After(toDate) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	movements, err := s.postedLines.SumPostedMovements(ctx, &fromDate, &toDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum movements for profit and loss")
		return nil, err
	}

	report := &domain.PAndLReport{
		From:          fromDate,
		To:            toDate,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, acc := range accounts {
		m, ok := movements[acc.AccountID]
		if !ok || !(isIncome(acc.AccountType) || isExpense(acc.AccountType)) {
			continue
		}
		net, err := accounting.SignedMovement(m.Debit, m.Credit, acc.AccountType)
		if err != nil {
			return nil, err
		}
		if isIncome(acc.AccountType) {
			report.Revenue = append(report.Revenue, toAccountAmount(acc, net))
			report.TotalRevenue = report.TotalRevenue.Add(net)
		} else {
			report.Expenses = append(report.Expenses, toAccountAmount(acc, net))
			report.TotalExpenses = report.TotalExpenses.Add(net)
		}
	}
	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// AccountBalanceTree rolls child balances up into their parents.
// A child whose normal side differs from its parent's (a contra account) is subtracted.
func (s *ledgerService) AccountBalanceTree(ctx context.Context, asOf *time.Time) ([]domain.AccountTreeNode, error) {
	accounts, balances, _, err := s.balancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to load balances for account tree")
		return nil, err
	}

	byID := make(map[string]domain.Account, len(accounts))
	children := make(map[string][]domain.Account)
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}
	roots := make([]domain.Account, 0)
	for _, acc := range accounts {
		if _, ok := byID[acc.ParentAccountID]; acc.ParentAccountID == "" || !ok {
			roots = append(roots, acc)
			continue
		}
		children[acc.ParentAccountID] = append(children[acc.ParentAccountID], acc)
	}

	byCode := func(a, b domain.Account) int { return strings.Compare(a.Code, b.Code) }
	var build func(acc domain.Account, depth int) domain.AccountTreeNode
	build = func(acc domain.Account, depth int) domain.AccountTreeNode {
		node := domain.AccountTreeNode{
			AccountID:       acc.AccountID,
			Code:            acc.Code,
			Name:            acc.Name,
			AccountType:     acc.AccountType,
			Balance:         balances[acc.AccountID],
			RolledUpBalance: balances[acc.AccountID],
			Children:        []domain.AccountTreeNode{},
		}
		// depth guards against a corrupted (cyclic) hierarchy
		if depth > len(accounts) {
			return node
		}
		kids := children[acc.AccountID]
		slices.SortFunc(kids, byCode)
		for _, kid := range kids {
			child := build(kid, depth+1)
			contribution := child.RolledUpBalance
			if kid.AccountType.IsDebitNormal() != acc.AccountType.IsDebitNormal() {
				contribution = contribution.Neg()
			}
			node.RolledUpBalance = node.RolledUpBalance.Add(contribution)
			node.Children = append(node.Children, child)
		}
		return node
	}

	slices.SortFunc(roots, byCode)
	tree := make([]domain.AccountTreeNode, len(roots))
	for i, root := range roots {
		tree[i] = build(root, 0)
	}
	return tree, nil
}
