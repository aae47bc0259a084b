package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `account_id, code, name, account_type, parent_account_id, description, is_active,
	is_system_account, opening_balance, balance, version,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool DBPool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	modelAccs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}
	return mapping.ToDomainAccountSlice(modelAccs), nil
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + `;`
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	modelAcc, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id = $1", accountID)
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.findOne(ctx, "code = $1", code)
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1);`, accountIDs)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		result[acc.AccountID] = acc
	}
	return result, nil
}

// FindAccountsByCodes retrieves multiple accounts by their codes, keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	if len(codes) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ANY($1);`, codes)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		result[acc.Code] = acc
	}
	return result, nil
}

// ListAccounts retrieves accounts matching the filter, ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 2)
	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.AccountType != "" {
		args = append(args, string(filter.AccountType))
		conditions = append(conditions, "account_type = $"+strconv.Itoa(len(args)))
	}
	if filter.ParentAccountID != nil {
		if *filter.ParentAccountID == "" {
			conditions = append(conditions, "parent_account_id IS NULL")
		} else {
			args = append(args, *filter.ParentAccountID)
			conditions = append(conditions, "parent_account_id = $"+strconv.Itoa(len(args)))
		}
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY code;`
	return r.queryAccounts(ctx, query, args...)
}

// CountLinesByAccount counts lines in any entry status referencing the account.
func (r *PgxAccountRepository) CountLinesByAccount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id = $1;`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lines for account %s: %w", accountID, err)
	}
	return count, nil
}

// SaveAccount inserts a new account together with its opening offset, if any.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account, offset *domain.OpeningOffset) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.AccountID, m.Code, m.Name, m.AccountType, m.ParentAccountID, m.Description, m.IsActive,
			m.IsSystemAccount, m.OpeningBalance, m.Balance, m.Version,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			switch pgErrorCode(err) {
			case pgUniqueViolation:
				return fmt.Errorf("%w %s", apperrors.ErrDuplicateCode, m.Code)
			case pgForeignKeyViolation:
				return apperrors.ErrInvalidParent
			}
			return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
		}
		return applyOpeningOffset(ctx, tx, offset, account.CreatedBy, account.CreatedAt)
	})
}

// applyOpeningOffset moves the offset account's opening and current balance by the same delta.
func applyOpeningOffset(ctx context.Context, tx pgx.Tx, offset *domain.OpeningOffset, actor string, now time.Time) error {
	if offset == nil {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET opening_balance = opening_balance + $2, balance = balance + $2, version = version + 1,
		    last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`, offset.AccountID, offset.Delta, now, actor)
	if err != nil {
		return fmt.Errorf("failed to apply opening offset to %s: %w", offset.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: offset account %s", apperrors.ErrAccountNotFound, offset.AccountID)
	}
	return nil
}

// UpdateAccount writes descriptive fields. Balance and version are owned by the posting path.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, description = $3, is_active = $4, parent_account_id = $5, account_type = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Name, m.Description, m.IsActive, m.ParentAccountID, m.AccountType,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.ErrInvalidParent
		}
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// DeleteAccount removes an account and reverts its opening offset.
// Referencing lines or children surface as foreign key violations.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string, offset *domain.OpeningOffset) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var actor string
		err := tx.QueryRow(ctx, `DELETE FROM accounts WHERE account_id = $1 RETURNING last_updated_by;`, accountID).Scan(&actor)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrAccountNotFound
			}
			if pgErrorCode(err) == pgForeignKeyViolation {
				return apperrors.ErrAccountInUse
			}
			return fmt.Errorf("failed to delete account %s: %w", accountID, err)
		}
		return applyOpeningOffset(ctx, tx, offset, actor, time.Now().UTC())
	})
}

// ResetBalances overwrites cached balances in one transaction, each guarded by its version.
func (r *PgxAccountRepository) ResetBalances(ctx context.Context, resets []domain.BalanceReset, actor string, now time.Time) error {
	if len(resets) == 0 {
		return nil
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, reset := range resets {
			batch.Queue(`
				UPDATE accounts
				SET balance = $2, version = version + 1, last_updated_at = $4, last_updated_by = $5
				WHERE account_id = $1 AND version = $3;
			`, reset.AccountID, reset.Balance, reset.ExpectedVersion, now, actor)
		}
		results := tx.SendBatch(ctx, batch)
		for range resets {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to reset balance: %w", err)
			}
			if tag.RowsAffected() == 0 {
				results.Close()
				return apperrors.ErrConcurrentModification
			}
		}
		return results.Close()
	})
}
