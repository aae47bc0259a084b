package mapping

import (
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		ParentAccountID: nullableString(d.ParentAccountID),
		Description:     d.Description,
		IsActive:        d.IsActive,
		IsSystemAccount: d.IsSystemAccount,
		OpeningBalance:  d.OpeningBalance,
		Balance:         d.Balance,
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		ParentAccountID: fromNullableString(m.ParentAccountID),
		Description:     m.Description,
		IsActive:        m.IsActive,
		IsSystemAccount: m.IsSystemAccount,
		OpeningBalance:  m.OpeningBalance,
		Balance:         m.Balance,
		Version:         m.Version,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
