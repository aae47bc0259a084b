package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line of a draft.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// ExtensionFieldRequest is a typed attribute attached to an entry.
type ExtensionFieldRequest struct {
	Key     string               `json:"key" binding:"required"`
	Kind    domain.ExtensionKind `json:"kind" binding:"required,oneof=string decimal date bool"`
	Value   string               `json:"value"`
	Version int                  `json:"version"` // Defaults to 1
}

// CreateDraftRequest defines the data needed to open a draft journal entry.
type CreateDraftRequest struct {
	Date        time.Time               `json:"date" binding:"required"`
	Description string                  `json:"description" binding:"required"`
	Reference   string                  `json:"reference"`
	Source      domain.EntrySource      `json:"source" binding:"omitempty,ledger_source"` // Defaults to manual
	SourceID    string                  `json:"sourceID"`
	Lines       []JournalLineRequest    `json:"lines" binding:"required,min=2,dive"`
	Extensions  []ExtensionFieldRequest `json:"extensions" binding:"omitempty,dive"`
}

// UpdateDraftRequest patches a draft. A non-nil Lines replaces the whole line set.
type UpdateDraftRequest struct {
	Date        *time.Time              `json:"date"`
	Description *string                 `json:"description"`
	Reference   *string                 `json:"reference"`
	Lines       []JournalLineRequest    `json:"lines" binding:"omitempty,min=2,dive"`
	Extensions  []ExtensionFieldRequest `json:"extensions" binding:"omitempty,dive"`
}

// ReverseEntryRequest optionally overrides the reversal date (defaults to today, UTC).
type ReverseEntryRequest struct {
	Date *time.Time `json:"date"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID     string          `json:"lineID"`
	LineNumber int             `json:"lineNumber"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID           string                  `json:"entryID"`
	EntryNumber       string                  `json:"entryNumber"`
	Date              time.Time               `json:"date"`
	Description       string                  `json:"description"`
	Reference         string                  `json:"reference"`
	Status            domain.EntryStatus      `json:"status"`
	TotalDebit        decimal.Decimal         `json:"totalDebit"`
	TotalCredit       decimal.Decimal         `json:"totalCredit"`
	IsBalanced        bool                    `json:"isBalanced"`
	Source            domain.EntrySource      `json:"source"`
	SourceID          string                  `json:"sourceID"`
	PostedBy          string                  `json:"postedBy,omitempty"`
	PostedAt          *time.Time              `json:"postedAt,omitempty"`
	ReversalOfEntryID *string                 `json:"reversalOfEntryID,omitempty"`
	ReversedByEntryID *string                 `json:"reversedByEntryID,omitempty"`
	Version           int64                   `json:"version"`
	Extensions        []domain.ExtensionField `json:"extensions"`
	Lines             []JournalLineResponse   `json:"lines"`
	CreatedAt         time.Time               `json:"createdAt"`
	CreatedBy         string                  `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:     l.LineID,
			LineNumber: l.LineNumber,
			AccountID:  l.AccountID,
			Debit:      l.DebitAmount,
			Credit:     l.CreditAmount,
			Memo:       l.Memo,
		}
	}
	extensions := e.Extensions
	if extensions == nil {
		extensions = []domain.ExtensionField{}
	}
	return JournalEntryResponse{
		EntryID:           e.EntryID,
		EntryNumber:       e.EntryNumber,
		Date:              e.EntryDate,
		Description:       e.Description,
		Reference:         e.Reference,
		Status:            e.Status,
		TotalDebit:        e.TotalDebit,
		TotalCredit:       e.TotalCredit,
		IsBalanced:        e.IsBalanced,
		Source:            e.Source,
		SourceID:          e.SourceID,
		PostedBy:          e.PostedBy,
		PostedAt:          e.PostedAt,
		ReversalOfEntryID: e.ReversalOfEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		Version:           e.Version,
		Extensions:        extensions,
		Lines:             lines,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To        *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Status    string     `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	Source    string     `form:"source" binding:"omitempty,ledger_source"`
	Search    string     `form:"q"`
	Order     string     `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string    `form:"nextToken"`
}

// ToEntryFilter converts query parameters to a domain filter.
func (p ListEntriesParams) ToEntryFilter() domain.EntryFilter {
	return domain.EntryFilter{
		From:      p.From,
		To:        p.To,
		Status:    domain.EntryStatus(p.Status),
		Source:    domain.EntrySource(p.Source),
		Search:    p.Search,
		Ascending: p.Order == "asc",
		Limit:     p.Limit,
		NextToken: p.NextToken,
	}
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken"`
}
