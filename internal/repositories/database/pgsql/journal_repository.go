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
	"github.com/SscSPs/general_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	entryColumns = `entry_id, entry_number, entry_date, description, reference, status,
	total_debit, total_credit, is_balanced, source, source_id, posted_by, posted_at,
	reversal_of_entry_id, reversed_by_entry_id, version,
	created_at, created_by, last_updated_at, last_updated_by`

	lineColumns = `line_id, entry_id, account_id, line_number, debit_amount, credit_amount, memo, created_at`

	defaultPageSize = 20
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool DBPool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// =============================================================================
// READS
// =============================================================================

// FindEntryByID retrieves an entry with its lines and extension fields.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findOneEntry(ctx, `entry_id = $1`, entryID)
}

// FindEntryBySource retrieves the original (non-reversal) entry recorded for a producer reference.
func (r *PgxJournalRepository) FindEntryBySource(ctx context.Context, source domain.EntrySource, sourceID string) (*domain.JournalEntry, error) {
	if sourceID == "" {
		return nil, apperrors.ErrEntryNotFound
	}
	return r.findOneEntry(ctx, `source = $1 AND source_id = $2 AND reversal_of_entry_id IS NULL`, string(source), sourceID)
}

func (r *PgxJournalRepository) findOneEntry(ctx context.Context, where string, args ...any) (*domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE `+where+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entry: %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	entries, err := r.attachDetails(ctx, r.Pool, []models.JournalEntry{m})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// attachDetails loads lines and extension fields for a set of entry headers in two queries.
func (r *PgxJournalRepository) attachDetails(ctx context.Context, q querier, headers []models.JournalEntry) ([]domain.JournalEntry, error) {
	entries := make([]domain.JournalEntry, len(headers))
	if len(headers) == 0 {
		return entries, nil
	}
	ids := make([]string, len(headers))
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournalEntry(h)
		entries[i].Lines = []domain.JournalLine{}
		ids[i] = h.EntryID
		index[h.EntryID] = i
	}

	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number;`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal lines: %w", err)
	}
	for _, l := range lines {
		i := index[l.EntryID]
		entries[i].Lines = append(entries[i].Lines, mapping.ToDomainJournalLine(l))
	}

	rows, err = q.Query(ctx, `
		SELECT entry_id, field_key, field_kind, field_value, field_version
		FROM journal_entry_extensions WHERE entry_id = ANY($1) ORDER BY entry_id, field_key;`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query extension fields: %w", err)
	}
	fields, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ExtensionField])
	if err != nil {
		return nil, fmt.Errorf("failed to scan extension fields: %w", err)
	}
	for _, f := range fields {
		i := index[f.EntryID]
		entries[i].Extensions = append(entries[i].Extensions, mapping.ToDomainExtensionField(f))
	}
	return entries, nil
}

// ListEntries returns a keyset-paginated page ordered by (entry_date, created_at, entry_id).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	// Fetch one extra row to learn whether another page exists
	fetchLimit := limit + 1

	conditions := make([]string, 0, 6)
	args := make([]any, 0, 8)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		conditions = append(conditions, "entry_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "entry_date <= "+arg(*filter.To))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = "+arg(string(filter.Source)))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, "(entry_number ILIKE "+p+" OR description ILIKE "+p+")")
	}

	direction, comparator := "DESC", "<"
	if filter.Ascending {
		direction, comparator = "ASC", ">"
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastDate, lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*filter.NextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %s", apperrors.ErrValidation, decodeErr.Error())
		}
		// Tuple comparison keeps the cursor stable across equal dates
		conditions = append(conditions, fmt.Sprintf("(entry_date, created_at, entry_id) %s (%s, %s, %s)",
			comparator, arg(lastDate), arg(lastCreatedAt), arg(lastID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY entry_date %[1]s, created_at %[1]s, entry_id %[1]s LIMIT %[2]s;`, direction, arg(fetchLimit))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	headers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan journal entries", err)
	}

	var nextToken *string
	if len(headers) > limit {
		headers = headers[:limit]
		last := headers[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		nextToken = &token
	}

	entries, err := r.attachDetails(ctx, r.Pool, headers)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextToken, nil
}

// =============================================================================
// DRAFT WRITES
// =============================================================================

// NextEntryNumber draws from a database sequence so numbers stay unique across processes.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq');`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to reserve entry number: %w", err)
	}
	return fmt.Sprintf("JE-%06d", n), nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID, m.EntryNumber, m.EntryDate, m.Description, m.Reference, m.Status,
		m.TotalDebit, m.TotalCredit, m.IsBalanced, m.Source, m.SourceID, m.PostedBy, m.PostedAt,
		m.ReversalOfEntryID, m.ReversedByEntryID, m.Version,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: source %s/%s already recorded", apperrors.ErrDuplicate, m.Source, m.SourceID)
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}
	return insertDetails(ctx, tx, entry)
}

// insertDetails writes lines and extension fields in a single round trip.
func insertDetails(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		l := mapping.ToModelJournalLine(line)
		batch.Queue(`INSERT INTO journal_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			l.LineID, entry.EntryID, l.AccountID, l.LineNumber, l.DebitAmount, l.CreditAmount, l.Memo, l.CreatedAt)
	}
	for _, f := range entry.Extensions {
		batch.Queue(`
			INSERT INTO journal_entry_extensions (entry_id, field_key, field_kind, field_value, field_version)
			VALUES ($1, $2, $3, $4, $5);`,
			entry.EntryID, f.Key, string(f.Kind), f.Value, f.Version)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.ErrAccountNotFound
		}
		return fmt.Errorf("failed to insert lines for entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// SaveDraft persists a new draft with its lines and extension fields.
func (r *PgxJournalRepository) SaveDraft(ctx context.Context, entry domain.JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		return insertEntry(ctx, tx, entry)
	})
}

// draftGuardError explains why a draft-only statement touched no rows.
func (r *PgxJournalRepository) draftGuardError(ctx context.Context, q pgx.Tx, entryID string) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read entry status: %w", err)
	}
	if domain.EntryStatus(status) != domain.Draft {
		return apperrors.ErrInvalidState
	}
	return apperrors.ErrConcurrentModification
}

// UpdateDraft replaces header, lines and extensions when the entry is still a draft at entry.Version.
func (r *PgxJournalRepository) UpdateDraft(ctx context.Context, entry domain.JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE journal_entries
			SET entry_date = $3, description = $4, reference = $5, total_debit = $6, total_credit = $7,
			    is_balanced = $8, version = version + 1, last_updated_at = $9, last_updated_by = $10
			WHERE entry_id = $1 AND version = $2 AND status = 'DRAFT';`,
			entry.EntryID, entry.Version, entry.EntryDate, entry.Description, entry.Reference,
			entry.TotalDebit, entry.TotalCredit, entry.IsBalanced, entry.LastUpdatedAt, entry.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update draft %s: %w", entry.EntryID, err)
		}
		if tag.RowsAffected() == 0 {
			return r.draftGuardError(ctx, tx, entry.EntryID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
			return fmt.Errorf("failed to clear lines of draft %s: %w", entry.EntryID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_extensions WHERE entry_id = $1;`, entry.EntryID); err != nil {
			return fmt.Errorf("failed to clear extensions of draft %s: %w", entry.EntryID, err)
		}
		return insertDetails(ctx, tx, entry)
	})
}

// DeleteDraft removes a draft. Lines and extensions cascade.
func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, entryID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = 'DRAFT';`, entryID)
		if err != nil {
			return fmt.Errorf("failed to delete draft %s: %w", entryID, err)
		}
		if tag.RowsAffected() == 0 {
			return r.draftGuardError(ctx, tx, entryID)
		}
		return nil
	})
}

// =============================================================================
// POSTED LOG
// =============================================================================

// SumPostedMovements aggregates debit and credit per account over non-draft entries dated in [from, to].
func (r *PgxJournalRepository) SumPostedMovements(ctx context.Context, from, to *time.Time) (map[string]domain.AccountMovement, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT l.account_id, COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.status <> 'DRAFT'
		  AND ($1::date IS NULL OR e.entry_date >= $1::date)
		  AND ($2::date IS NULL OR e.entry_date <= $2::date)
		GROUP BY l.account_id;`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted movements: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.AccountMovement)
	for rows.Next() {
		var accountID string
		var debit, credit decimal.Decimal
		if err := rows.Scan(&accountID, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		result[accountID] = domain.AccountMovement{Debit: debit, Credit: credit}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return result, nil
}

// ledgerWindow renders the WHERE clause shared by the ledger reads. Lines are
// compared to a resume key as a tuple in ledger order.
func ledgerWindow(accountID string, from, to *time.Time, key *domain.LedgerKey, comparator string) (string, []any) {
	args := []any{accountID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	conditions := []string{"l.account_id = $1", "e.status <> 'DRAFT'"}
	if from != nil {
		conditions = append(conditions, "e.entry_date >= "+arg(*from))
	}
	if to != nil {
		conditions = append(conditions, "e.entry_date <= "+arg(*to))
	}
	if key != nil {
		conditions = append(conditions, fmt.Sprintf("(e.entry_date, e.posted_at, e.entry_number, l.line_number) %s (%s, %s, %s, %s)",
			comparator, arg(key.EntryDate), arg(key.PostedAt), arg(key.EntryNumber), arg(key.LineNumber)))
	}
	return `
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE ` + strings.Join(conditions, " AND "), args
}

// SumPostedByAccount totals the account's posted lines up to and including upTo in ledger order.
func (r *PgxJournalRepository) SumPostedByAccount(ctx context.Context, accountID string, from, to *time.Time, upTo *domain.LedgerKey) (domain.AccountMovement, error) {
	where, args := ledgerWindow(accountID, from, to, upTo, "<=")
	var m domain.AccountMovement
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)`+where+`;`, args...,
	).Scan(&m.Debit, &m.Credit)
	if err != nil {
		return domain.AccountMovement{}, fmt.Errorf("failed to sum ledger for account %s: %w", accountID, err)
	}
	return m, nil
}

// ListPostedLinesByAccount returns a window of the account's posted lines in ledger order,
// seeking past query.After rather than skipping rows.
func (r *PgxJournalRepository) ListPostedLinesByAccount(ctx context.Context, query domain.LedgerQuery) ([]domain.LedgerLine, error) {
	where, args := ledgerWindow(query.AccountID, query.From, query.To, query.After, ">")
	sql := `
		SELECT e.entry_id, e.entry_number, e.entry_date, e.description, e.posted_at,
		       l.line_id, l.line_number, l.debit_amount, l.credit_amount` + where + `
		ORDER BY e.entry_date, e.posted_at, e.entry_number, l.line_number`
	if query.Limit > 0 {
		args = append(args, query.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}
	rows, err := r.Pool.Query(ctx, sql+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for account %s: %w", query.AccountID, err)
	}
	modelLines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger lines: %w", err)
	}
	lines := make([]domain.LedgerLine, len(modelLines))
	for i, m := range modelLines {
		lines[i] = mapping.ToDomainLedgerLine(m)
	}
	return lines, nil
}

// =============================================================================
// POSTING
// =============================================================================

// ApplyPosting commits the status change, the optional reversal link and every
// version-guarded balance update in one transaction. Any guard touching zero
// rows aborts the whole batch.
func (r *PgxJournalRepository) ApplyPosting(ctx context.Context, batch domain.PostingBatch) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		entry := batch.Entry
		if batch.InsertEntry {
			posted := entry
			posted.Status = domain.Posted
			posted.PostedBy = batch.PostedBy
			posted.PostedAt = &batch.PostedAt
			posted.LastUpdatedAt = batch.PostedAt
			posted.LastUpdatedBy = batch.PostedBy
			if err := insertEntry(ctx, tx, posted); err != nil {
				return err
			}
		} else {
			tag, err := tx.Exec(ctx, `
				UPDATE journal_entries
				SET status = 'POSTED', posted_by = $3, posted_at = $4, version = version + 1,
				    last_updated_at = $4, last_updated_by = $3
				WHERE entry_id = $1 AND version = $2 AND status = 'DRAFT';`,
				entry.EntryID, entry.Version, batch.PostedBy, batch.PostedAt)
			if err != nil {
				return fmt.Errorf("failed to post entry %s: %w", entry.EntryID, err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrConcurrentModification
			}
		}

		if batch.ReversesEntryID != "" {
			tag, err := tx.Exec(ctx, `
				UPDATE journal_entries
				SET status = 'REVERSED', reversed_by_entry_id = $2, version = version + 1,
				    last_updated_at = $3, last_updated_by = $4
				WHERE entry_id = $1 AND status = 'POSTED' AND reversed_by_entry_id IS NULL;`,
				batch.ReversesEntryID, entry.EntryID, batch.PostedAt, batch.PostedBy)
			if err != nil {
				return fmt.Errorf("failed to mark entry %s reversed: %w", batch.ReversesEntryID, err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrConcurrentModification
			}
		}

		// Deltas go one statement at a time so the first stale version stops the batch.
		for _, d := range batch.Deltas {
			tag, err := tx.Exec(ctx, `
				UPDATE accounts
				SET balance = balance + $2, version = version + 1, last_updated_at = $4, last_updated_by = $5
				WHERE account_id = $1 AND version = $3;`,
				d.AccountID, d.Delta, d.ExpectedVersion, batch.PostedAt, batch.PostedBy)
			if err != nil {
				return fmt.Errorf("failed to apply delta to account %s: %w", d.AccountID, err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrConcurrentModification
			}
		}
		return nil
	})
}
