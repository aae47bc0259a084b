package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ExtensionKind is the declared type of an extension field value.
type ExtensionKind string

const (
	ExtensionString  ExtensionKind = "string"
	ExtensionDecimal ExtensionKind = "decimal"
	ExtensionDate    ExtensionKind = "date"
	ExtensionBool    ExtensionKind = "bool"
)

// reservedExtensionKeys shadow core entry fields and cannot be used as extension keys.
var reservedExtensionKeys = map[string]struct{}{
	"entryID": {}, "entryNumber": {}, "entryDate": {}, "status": {},
	"totalDebit": {}, "totalCredit": {}, "isBalanced": {}, "source": {},
	"sourceID": {}, "postedBy": {}, "postedAt": {}, "lines": {},
}

// ExtensionField is a typed, versioned attribute attached to a journal entry.
// It replaces free-form metadata blobs so that no opaque field can carry ledger semantics.
type ExtensionField struct {
	Key     string        `json:"key"`
	Kind    ExtensionKind `json:"kind"`
	Value   string        `json:"value"`
	Version int           `json:"version"`
}

// Validate checks the key is usable and the value parses as the declared kind.
func (f ExtensionField) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("extension key is required")
	}
	if _, reserved := reservedExtensionKeys[f.Key]; reserved {
		return fmt.Errorf("extension key %q is reserved", f.Key)
	}
	if f.Version < 1 {
		return fmt.Errorf("extension %q: version must be at least 1", f.Key)
	}
	switch f.Kind {
	case ExtensionString:
	case ExtensionDecimal:
		if _, err := decimal.NewFromString(f.Value); err != nil {
			return fmt.Errorf("extension %q: invalid decimal: %w", f.Key, err)
		}
	case ExtensionDate:
		if _, err := time.Parse(time.DateOnly, f.Value); err != nil {
			return fmt.Errorf("extension %q: invalid date: %w", f.Key, err)
		}
	case ExtensionBool:
		if _, err := strconv.ParseBool(f.Value); err != nil {
			return fmt.Errorf("extension %q: invalid bool: %w", f.Key, err)
		}
	default:
		return fmt.Errorf("extension %q: unknown kind %q", f.Key, f.Kind)
	}
	return nil
}

// ValidateExtensions validates each field and rejects duplicate keys.
func ValidateExtensions(fields []ExtensionField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return err
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("extension key %q appears more than once", f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}
