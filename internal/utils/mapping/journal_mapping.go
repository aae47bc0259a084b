package mapping

import (
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry.
// Lines and extensions are mapped separately.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:           d.EntryID,
		EntryNumber:       d.EntryNumber,
		EntryDate:         d.EntryDate,
		Description:       d.Description,
		Reference:         d.Reference,
		Status:            string(d.Status),
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		IsBalanced:        d.IsBalanced,
		Source:            string(d.Source),
		SourceID:          d.SourceID,
		PostedBy:          nullableString(d.PostedBy),
		PostedAt:          d.PostedAt,
		ReversalOfEntryID: d.ReversalOfEntryID,
		ReversedByEntryID: d.ReversedByEntryID,
		Version:           d.Version,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry without lines.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:           m.EntryID,
		EntryNumber:       m.EntryNumber,
		EntryDate:         m.EntryDate.UTC(),
		Description:       m.Description,
		Reference:         m.Reference,
		Status:            domain.EntryStatus(m.Status),
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		IsBalanced:        m.IsBalanced,
		Source:            domain.EntrySource(m.Source),
		SourceID:          m.SourceID,
		PostedBy:          fromNullableString(m.PostedBy),
		PostedAt:          m.PostedAt,
		ReversalOfEntryID: m.ReversalOfEntryID,
		ReversedByEntryID: m.ReversedByEntryID,
		Version:           m.Version,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		AccountID:    d.AccountID,
		LineNumber:   d.LineNumber,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		Memo:         d.Memo,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		LineNumber:   m.LineNumber,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Memo:         m.Memo,
		CreatedAt:    m.CreatedAt,
	}
}

// ToDomainExtensionField converts a model ExtensionField to a domain ExtensionField
func ToDomainExtensionField(m models.ExtensionField) domain.ExtensionField {
	return domain.ExtensionField{
		Key:     m.Key,
		Kind:    domain.ExtensionKind(m.Kind),
		Value:   m.Value,
		Version: m.Version,
	}
}

// ToDomainLedgerLine converts a model LedgerLine to a domain LedgerLine. RunningBalance is left for the caller.
func ToDomainLedgerLine(m models.LedgerLine) domain.LedgerLine {
	return domain.LedgerLine{
		EntryID:     m.EntryID,
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate.UTC(),
		Description: m.Description,
		LineID:      m.LineID,
		LineNumber:  m.LineNumber,
		Debit:       m.Debit,
		Credit:      m.Credit,
		PostedAt:    m.PostedAt,
	}
}
