package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitLineRequest addresses an account by its human code rather than its id.
type SubmitLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// SubmitEntryRequest is the inbound contract used by producer modules (billing, payroll, ...).
type SubmitEntryRequest struct {
	Source      domain.EntrySource  `json:"source" binding:"required,ledger_source"`
	SourceID    string              `json:"sourceId"`
	Date        time.Time           `json:"date" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Reference   string              `json:"reference"`
	Lines       []SubmitLineRequest `json:"lines" binding:"required,min=2,dive"`
	AutoPost    bool                `json:"autoPost"`
	// ExpectedTotal, when supplied, is the producer's own computed entry total. It must equal the sum of debits.
	ExpectedTotal *decimal.Decimal `json:"expectedTotal"`
}

// SubmitEntryResponse is returned to the producer.
type SubmitEntryResponse struct {
	EntryID     string             `json:"entryId"`
	EntryNumber string             `json:"entryNumber"`
	Status      domain.EntryStatus `json:"status"`
	Duplicate   bool               `json:"duplicate"` // True when (source, sourceId) was already recorded
}
