package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// AsOfParams selects a point in time. A missing asOf means now (the cached balances).
type AsOfParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
}

// PeriodParams bounds a reporting period, both ends inclusive.
type PeriodParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" binding:"required"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   string          `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOfDate string                    `json:"asOfDate"`
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Totals   struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	IsBalanced bool `json:"isBalanced"`
}

// ToTrialBalanceResponse converts the domain report into the outbound contract.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOfDate:   tb.AsOf.Format(dateLayout),
		Rows:       make([]TrialBalanceRowResponse, len(tb.Rows)),
		IsBalanced: tb.IsBalanced,
	}
	for i, row := range tb.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountCode:   row.AccountCode,
			AccountName:   row.AccountName,
			AccountType:   string(row.AccountType),
			DebitBalance:  row.DebitBalance,
			CreditBalance: row.CreditBalance,
		}
	}
	resp.Totals.Debit = tb.TotalDebit
	resp.Totals.Credit = tb.TotalCredit
	return resp
}

// AccountLedgerParams defines query parameters for an account ledger page.
type AccountLedgerParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To        *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Limit     int        `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken *string    `form:"nextToken"`
}

// AccountLedgerEntryResponse is one line of an account ledger.
type AccountLedgerEntryResponse struct {
	Date           string          `json:"date"`
	EntryNumber    string          `json:"entryNumber"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedgerPageResponse represents a page of an account's posted history.
type AccountLedgerPageResponse struct {
	AccountCode  string                       `json:"accountCode"`
	StartBalance decimal.Decimal              `json:"startBalance"`
	Entries      []AccountLedgerEntryResponse `json:"entries"`
	NextToken    *string                      `json:"nextToken"`
}

// ToAccountLedgerPageResponse converts the domain page into the outbound contract.
func ToAccountLedgerPageResponse(page *domain.AccountLedgerPage) AccountLedgerPageResponse {
	resp := AccountLedgerPageResponse{
		AccountCode:  page.AccountCode,
		StartBalance: page.StartBalance,
		Entries:      make([]AccountLedgerEntryResponse, len(page.Lines)),
		NextToken:    page.NextToken,
	}
	for i, l := range page.Lines {
		resp.Entries[i] = AccountLedgerEntryResponse{
			Date:           l.EntryDate.Format(dateLayout),
			EntryNumber:    l.EntryNumber,
			Description:    l.Description,
			Debit:          l.Debit,
			Credit:         l.Credit,
			RunningBalance: l.RunningBalance,
		}
	}
	return resp
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

func toAccountAmounts(items []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(items))
	for i, item := range items {
		res[i] = AccountAmountResponse{AccountID: item.AccountID, Code: item.Code, Name: item.Name, Amount: item.NetAmount}
	}
	return res
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetProfit     decimal.Decimal `json:"netProfit"`
	} `json:"summary"`
}

// ToProfitAndLossResponse converts the domain report to the response DTO.
func ToProfitAndLossResponse(r *domain.PAndLReport) ProfitAndLossResponse {
	resp := ProfitAndLossResponse{
		FromDate: r.From.Format(dateLayout),
		ToDate:   r.To.Format(dateLayout),
		Revenue:  toAccountAmounts(r.Revenue),
		Expenses: toAccountAmounts(r.Expenses),
	}
	resp.Summary.TotalRevenue = r.TotalRevenue
	resp.Summary.TotalExpenses = r.TotalExpenses
	resp.Summary.NetProfit = r.NetProfit
	return resp
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
		TotalEquity      decimal.Decimal `json:"totalEquity"`
		CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	} `json:"summary"`
}

// ToBalanceSheetResponse converts the domain report to the response DTO.
func ToBalanceSheetResponse(r *domain.BalanceSheetReport) BalanceSheetResponse {
	resp := BalanceSheetResponse{
		AsOf:        r.AsOf.Format(dateLayout),
		Assets:      toAccountAmounts(r.Assets),
		Liabilities: toAccountAmounts(r.Liabilities),
		Equity:      toAccountAmounts(r.Equity),
	}
	resp.Summary.TotalAssets = r.TotalAssets
	resp.Summary.TotalLiabilities = r.TotalLiabilities
	resp.Summary.TotalEquity = r.TotalEquity
	resp.Summary.CurrentEarnings = r.CurrentEarnings
	return resp
}
