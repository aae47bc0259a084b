package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	postedLines portsrepo.PostedLineReader
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the clock used for audit fields and as-of decisions.
func WithAccountClock(clock func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, postedLines portsrepo.PostedLineReader, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		postedLines: postedLines,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if !req.OpeningBalance.Equal(req.OpeningBalance.Round(domain.CurrencyPlaces)) {
		return nil, fmt.Errorf("%w: opening balance exceeds currency precision", apperrors.ErrValidation)
	}

	if code == domain.OpeningBalanceEquityCode && !req.OpeningBalance.IsZero() {
		return nil, fmt.Errorf("%w: account %s absorbs opening balances and cannot carry its own", apperrors.ErrValidation, code)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		if _, err := s.accountRepo.FindAccountByID(ctx, parentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %s does not exist", apperrors.ErrInvalidParent, parentID)
			}
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", parentID))
			return nil, err
		}
	}

	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		IsSystemAccount: req.IsSystemAccount,
		OpeningBalance:  req.OpeningBalance,
		Balance:         req.OpeningBalance,
		Version:         1,
		AuditFields:     domain.NewAuditFields(actor, s.Now()),
	}

	var offset *domain.OpeningOffset
	if !account.OpeningBalance.IsZero() {
		var err error
		if offset, err = s.openingOffset(ctx, account, actor); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.SaveAccount(ctx, account, offset); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

// openingOffset builds the counter-entry that keeps the ledger balanced when account starts
// with a nonzero opening balance. The offset account is created on first use.
func (s *accountService) openingOffset(ctx context.Context, account domain.Account, actor string) (*domain.OpeningOffset, error) {
	equity, err := s.openingBalanceEquity(ctx, actor)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve opening balance equity account")
		return nil, err
	}
	delta, err := accounting.OpeningOffset(account.OpeningBalance, account.AccountType, equity.AccountType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return &domain.OpeningOffset{AccountID: equity.AccountID, Delta: delta}, nil
}

func (s *accountService) openingBalanceEquity(ctx context.Context, actor string) (*domain.Account, error) {
	code := domain.OpeningBalanceEquityCode
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
		return account, err
	}

	entry, _ := domain.ChartEntryByCode(code)
	var parentID *string
	if parent, err := s.accountRepo.FindAccountByCode(ctx, entry.ParentCode); err == nil {
		parentID = &parent.AccountID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	account, err = s.CreateAccount(ctx, dto.CreateAccountRequest{
		Code:            entry.Code,
		Name:            entry.Name,
		AccountType:     entry.AccountType,
		ParentAccountID: parentID,
		Description:     entry.Description,
		IsSystemAccount: true,
	}, actor)
	if errors.Is(err, apperrors.ErrDuplicateCode) {
		// Lost a race with another creator.
		return s.accountRepo.FindAccountByCode(ctx, code)
	}
	return account, err
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.AccountType != "" && !filter.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, filter.AccountType)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.AccountType != nil {
		if account.IsSystemAccount {
			return nil, fmt.Errorf("%w: cannot change the type of system account %s", apperrors.ErrSystemAccountImmutable, account.Code)
		}
		if *req.AccountType != account.AccountType {
			if !req.AccountType.IsValid() {
				return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, *req.AccountType)
			}
			lines, err := s.accountRepo.CountLinesByAccount(ctx, accountID)
			if err != nil {
				s.LogError(ctx, err, "Failed to count account lines", slog.String("account_id", accountID))
				return nil, err
			}
			if lines > 0 {
				return nil, fmt.Errorf("%w: account type cannot change once transactions exist", apperrors.ErrValidation)
			}
			if !account.OpeningBalance.IsZero() {
				return nil, fmt.Errorf("%w: account type cannot change while an opening balance is recorded", apperrors.ErrValidation)
			}
			account.AccountType = *req.AccountType
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		account.Name = name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != account.ParentAccountID {
		if err := s.checkParent(ctx, account.AccountID, *req.ParentAccountID); err != nil {
			return nil, err
		}
		account.ParentAccountID = *req.ParentAccountID
	}

	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = actor
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// checkParent walks up from the proposed parent; meeting the account itself means the move would form a cycle.
func (s *accountService) checkParent(ctx context.Context, accountID, parentID string) error {
	seen := map[string]bool{}
	for current := parentID; current != ""; {
		if current == accountID {
			return fmt.Errorf("%w: moving under %s would form a cycle", apperrors.ErrInvalidParent, parentID)
		}
		if seen[current] {
			return fmt.Errorf("%w: existing hierarchy above %s is cyclic", apperrors.ErrInvalidParent, parentID)
		}
		seen[current] = true
		parent, err := s.accountRepo.FindAccountByID(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent %s does not exist", apperrors.ErrInvalidParent, current)
			}
			return err
		}
		current = parent.ParentAccountID
	}
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.IsSystemAccount {
		return fmt.Errorf("%w: system account %s cannot be deleted", apperrors.ErrSystemAccountImmutable, account.Code)
	}

	lines, err := s.accountRepo.CountLinesByAccount(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count account lines", slog.String("account_id", accountID))
		return err
	}
	if lines > 0 {
		return fmt.Errorf("%w: %d journal lines reference %s", apperrors.ErrAccountInUse, lines, account.Code)
	}
	parentID := accountID
	children, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{ParentAccountID: &parentID, IncludeInactive: true})
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: account %s still has %d child accounts", apperrors.ErrValidation, account.Code, len(children))
	}

	var offset *domain.OpeningOffset
	if !account.OpeningBalance.IsZero() {
		if account.Code == domain.OpeningBalanceEquityCode {
			return fmt.Errorf("%w: account %s still offsets opening balances", apperrors.ErrAccountInUse, account.Code)
		}
		original, err := s.openingOffset(ctx, *account, actor)
		if err != nil {
			return err
		}
		undo := original.Negated()
		offset = &undo
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID, offset); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID), slog.String("code", account.Code), slog.String("actor", actor))
	return nil
}

func (s *accountService) GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !isHistorical(asOf, s.Today()) {
		return account.Balance, nil
	}

	balances, err := replayBalances(ctx, s.postedLines, []domain.Account{*account}, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to replay balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return balances[accountID], nil
}

func (s *accountService) VerifyBalances(ctx context.Context) ([]domain.BalanceDrift, error) {
	drift, _, err := s.findDrift(ctx)
	return drift, err
}

func (s *accountService) findDrift(ctx context.Context) ([]domain.BalanceDrift, map[string]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, nil, err
	}
	replayed, err := replayBalances(ctx, s.postedLines, accounts, nil)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]domain.Account, len(accounts))
	drift := make([]domain.BalanceDrift, 0)
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
		if !acc.Balance.Equal(replayed[acc.AccountID]) {
			drift = append(drift, domain.BalanceDrift{
				AccountID: acc.AccountID,
				Code:      acc.Code,
				Cached:    acc.Balance,
				Replayed:  replayed[acc.AccountID],
			})
		}
	}
	return drift, byID, nil
}

func (s *accountService) RebuildBalances(ctx context.Context, actor string) ([]domain.BalanceDrift, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	drift, accounts, err := s.findDrift(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance drift")
		return nil, err
	}
	if len(drift) == 0 {
		return drift, nil
	}

	resets := make([]domain.BalanceReset, len(drift))
	for i, d := range drift {
		resets[i] = domain.BalanceReset{
			AccountID:       d.AccountID,
			Balance:         d.Replayed,
			ExpectedVersion: accounts[d.AccountID].Version,
		}
	}
	if err := s.accountRepo.ResetBalances(ctx, resets, actor, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to reset drifted balances", slog.Int("accounts", len(resets)))
		return nil, err
	}
	s.GetLogger(ctx).Warn("Rebuilt drifted account balances", slog.Int("accounts", len(resets)), slog.String("actor", actor))
	return drift, nil
}

func (s *accountService) SeedDefaultChart(ctx context.Context, actor string) ([]domain.Account, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	codes := make([]string, len(domain.DefaultChart))
	for i, entry := range domain.DefaultChart {
		codes[i] = entry.Code
	}
	existing, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up chart codes")
		return nil, err
	}

	created := make([]domain.Account, 0, len(domain.DefaultChart))
	for _, entry := range domain.DefaultChart {
		if _, ok := existing[entry.Code]; ok {
			continue
		}
		var parentID *string
		if entry.ParentCode != "" {
			parent, ok := existing[entry.ParentCode]
			if !ok {
				return created, fmt.Errorf("%w: chart parent %s missing for %s", apperrors.ErrInvalidParent, entry.ParentCode, entry.Code)
			}
			parentID = &parent.AccountID
		}
		account, err := s.CreateAccount(ctx, dto.CreateAccountRequest{
			Code:            entry.Code,
			Name:            entry.Name,
			AccountType:     entry.AccountType,
			ParentAccountID: parentID,
			Description:     entry.Description,
			IsSystemAccount: true,
		}, actor)
		if err != nil {
			return created, err
		}
		existing[entry.Code] = *account
		created = append(created, *account)
	}

	s.LogInfo(ctx, "Default chart seeded", slog.Int("created", len(created)))
	return created, nil
}
