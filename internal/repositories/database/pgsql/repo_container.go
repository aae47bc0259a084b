package pgsql

import (
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider backs both repository facades with one connection pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		JournalRepo: newPgxJournalRepository(dbPool),
	}
}
