package pgsql

import (
	"context"
	"testing"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openedCash() domain.Account {
	return domain.Account{
		AccountID: "cash", Code: "1111", Name: "Cash", AccountType: domain.Asset, IsActive: true,
		OpeningBalance: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100), Version: 1,
		AuditFields: domain.NewAuditFields("user-1", postedAt),
	}
}

func TestSaveAccount_AppliesOffsetInSameTransaction(t *testing.T) {
	pool := newMockPool(t)
	repo := newPgxAccountRepository(pool)

	pool.ExpectBegin()
	pool.ExpectExec("INSERT INTO accounts").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("UPDATE accounts").
		WithArgs("equity", decimal.NewFromInt(100), postedAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectCommit()

	err := repo.SaveAccount(context.Background(), openedCash(), &domain.OpeningOffset{AccountID: "equity", Delta: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestSaveAccount_MissingOffsetAccountRollsBack(t *testing.T) {
	pool := newMockPool(t)
	repo := newPgxAccountRepository(pool)
	account := openedCash()

	pool.ExpectBegin()
	pool.ExpectExec("INSERT INTO accounts").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("UPDATE accounts").
		WithArgs("equity", decimal.NewFromInt(100), postedAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	pool.ExpectRollback()

	err := repo.SaveAccount(context.Background(), account, &domain.OpeningOffset{AccountID: "equity", Delta: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}
