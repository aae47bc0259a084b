package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=20"`
	Name            string             `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE COST_OF_GOODS_SOLD OTHER_INCOME OTHER_EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	Description     string             `json:"description"`     // Optional
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`  // Defaults to zero
	IsSystemAccount bool               `json:"isSystemAccount"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string             `json:"name"`
	Description     *string             `json:"description"`
	IsActive        *bool               `json:"isActive"`
	ParentAccountID *string             `json:"parentAccountID"` // Empty string moves the account to the root
	AccountType     *domain.AccountType `json:"accountType"`     // Only for non-system accounts without lines
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	ParentAccountID string             `json:"parentAccountID"` // Empty string for root accounts
	Description     string             `json:"description"`
	IsActive        bool               `json:"isActive"`
	IsSystemAccount bool               `json:"isSystemAccount"`
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`
	CurrentBalance  decimal.Decimal    `json:"currentBalance"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		IsSystemAccount: acc.IsSystemAccount,
		OpeningBalance:  acc.OpeningBalance,
		CurrentBalance:  acc.Balance,
		Version:         acc.Version,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      *time.Time      `json:"asOf,omitempty"` // Nil means the cached current balance
	Balance   decimal.Decimal `json:"balance"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType     string  `form:"accountType"`
	ParentAccountID *string `form:"parentAccountID"`
	IncludeInactive bool    `form:"includeInactive"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// SeedChartResponse reports the accounts created by a chart seed.
type SeedChartResponse struct {
	Created []AccountResponse `json:"created"`
}

// BalanceCheckResponse lists accounts whose cached balance disagrees with the posted log.
type BalanceCheckResponse struct {
	Drift []domain.BalanceDrift `json:"drift"`
}
