package services

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its human-readable code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves the chart of accounts, ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount registers a new account whose current balance starts at its opening balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// UpdateAccount patches descriptive fields of an account.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actor string) (*domain.Account, error)

	// DeleteAccount removes an account that no journal line references.
	DeleteAccount(ctx context.Context, accountID string, actor string) error

	// SeedDefaultChart creates the standard system chart. Existing codes are left untouched.
	SeedDefaultChart(ctx context.Context, actor string) ([]domain.Account, error)
}

// AccountCalculatorSvc defines balance operations for account data
type AccountCalculatorSvc interface {
	// GetBalance returns the cached balance, or a replay of the posted log when asOf is in the past.
	GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// VerifyBalances reports accounts whose cached balance disagrees with a replay of the log.
	VerifyBalances(ctx context.Context) ([]domain.BalanceDrift, error)

	// RebuildBalances overwrites every drifted cache with its replayed value and returns what it fixed.
	RebuildBalances(ctx context.Context, actor string) ([]domain.BalanceDrift, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
