package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeToken creates a base64 encoded token from an entry date, its creation time and its id.
// The id breaks ties between entries created in the same instant.
func EncodeToken(entryDate time.Time, createdAt time.Time, entryID string) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", entryDate.Format(timeFormat), createdAt.Format(timeFormat), entryID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into entry date, creation time and id.
func DecodeToken(token string) (time.Time, time.Time, string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return entryDate, createdAt, parts[2], nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// ledgerTokenPrefix scopes account ledger tokens so a journal listing token is never accepted in their place.
const ledgerTokenPrefix = "ledger"

// EncodeLedgerToken creates a resume point for an account ledger: the account and the
// ledger position of the last line returned.
func EncodeLedgerToken(accountID string, key domain.LedgerKey) string {
	return EncodeMultiFieldToken(ledgerTokenPrefix, accountID,
		key.EntryDate.Format(timeFormat), key.PostedAt.Format(timeFormat),
		key.EntryNumber, strconv.Itoa(key.LineNumber))
}

// DecodeLedgerToken returns the ledger position to resume after. The token must belong to accountID.
func DecodeLedgerToken(token, accountID string) (domain.LedgerKey, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return domain.LedgerKey{}, err
	}
	if len(parts) != 6 || parts[0] != ledgerTokenPrefix {
		return domain.LedgerKey{}, fmt.Errorf("invalid pagination token format (not a ledger token)")
	}
	if parts[1] != accountID {
		return domain.LedgerKey{}, fmt.Errorf("pagination token belongs to a different account")
	}
	entryDate, err := time.Parse(timeFormat, parts[2])
	if err != nil {
		return domain.LedgerKey{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	postedAt, err := time.Parse(timeFormat, parts[3])
	if err != nil {
		return domain.LedgerKey{}, fmt.Errorf("invalid pagination token format (posted_at parse): %w", err)
	}
	lineNumber, err := strconv.Atoi(parts[5])
	if err != nil {
		return domain.LedgerKey{}, fmt.Errorf("invalid pagination token format (line number): %w", err)
	}
	return domain.LedgerKey{EntryDate: entryDate, PostedAt: postedAt, EntryNumber: parts[4], LineNumber: lineNumber}, nil
}
