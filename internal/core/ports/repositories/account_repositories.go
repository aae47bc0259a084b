package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique human-readable code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by id. Unknown ids are simply absent.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Unknown codes are simply absent.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// CountLinesByAccount counts journal lines in any status that reference the account.
	CountLinesByAccount(ctx context.Context, accountID string) (int, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A taken code yields apperrors.ErrDuplicateCode.
	// A non-nil offset is applied to its account in the same unit (opening and current balance).
	SaveAccount(ctx context.Context, account domain.Account, offset *domain.OpeningOffset) error

	// UpdateAccount persists descriptive fields (name, description, active flag, parent, type).
	// Balance and version are never written through this path.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account with no referencing lines (apperrors.ErrAccountInUse otherwise).
	// A non-nil offset is applied in the same unit, undoing the account's opening counter-entry.
	DeleteAccount(ctx context.Context, accountID string, offset *domain.OpeningOffset) error

	// ResetBalances overwrites cached balances, each guarded by its expected version.
	ResetBalances(ctx context.Context, resets []domain.BalanceReset, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
