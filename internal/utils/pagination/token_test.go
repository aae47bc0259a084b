package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard date/time values
	entryDate := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(entryDate, createdAt, "entry-1")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, entryDate, decodedDate, "Entry date should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, "entry-1", decodedID)

	// Test case 2: Zero time values
	zeroTime := time.Time{}
	zeroToken := EncodeToken(zeroTime, zeroTime, "")
	decodedZeroDate, decodedZeroTime, _, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate)
	assert.Equal(t, zeroTime, decodedZeroTime)

	// Test case 3: Current time values
	now := time.Now().UTC()
	_, decodedNow, _, err := DecodeToken(EncodeToken(now, now, "x"))
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	_, _, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	missingSeparator := base64.URLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, _, err = DecodeToken(missingSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45Z|id"))
	_, _, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)

	_, err = DecodeMultiFieldToken("%%%")
	assert.Error(t, err)
}

func TestLedgerToken(t *testing.T) {
	key := domain.LedgerKey{
		EntryDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PostedAt:    time.Date(2024, 3, 1, 9, 15, 0, 500, time.UTC),
		EntryNumber: "JE-000042",
		LineNumber:  3,
	}
	token := EncodeLedgerToken("acc-1", key)

	decoded, err := DecodeLedgerToken(token, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, key.Compare(decoded))
	assert.Equal(t, "JE-000042", decoded.EntryNumber)
	assert.Equal(t, 3, decoded.LineNumber)

	_, err = DecodeLedgerToken(token, "acc-2")
	assert.Error(t, err, "token must not be replayed against another account")

	_, err = DecodeLedgerToken(EncodeMultiFieldToken("a", "b"), "acc-1")
	assert.Error(t, err)

	_, err = DecodeLedgerToken(EncodeMultiFieldToken("ledger", "acc-1", "x", "y", "JE-1", "1"), "acc-1")
	assert.Error(t, err)

	_, err = DecodeLedgerToken(EncodeMultiFieldToken("ledger", "acc-1",
		key.EntryDate.Format(time.RFC3339Nano), key.PostedAt.Format(time.RFC3339Nano), "JE-1", "first"), "acc-1")
	assert.Error(t, err)

	_, err = DecodeLedgerToken(EncodeToken(time.Now(), time.Now(), "e"), "acc-1")
	assert.Error(t, err, "journal listing token is not a ledger token")
}
