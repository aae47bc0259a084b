package domain

// ChartEntry is a predefined account created when a company's ledger is set up.
type ChartEntry struct {
	Code        string
	Name        string
	AccountType AccountType
	ParentCode  string // Empty for top-level group accounts
	Description string
}

// OpeningBalanceEquityCode is the chart account that absorbs the other side of every opening balance.
const OpeningBalanceEquityCode = "3900"

// ChartEntryByCode looks up a predefined account.
func ChartEntryByCode(code string) (ChartEntry, bool) {
	for _, entry := range DefaultChart {
		if entry.Code == code {
			return entry, true
		}
	}
	return ChartEntry{}, false
}

// DefaultChart is the standard system chart, parents listed before their children.
// Producer modules (billing, GST, payroll, ...) post against these codes.
var DefaultChart = []ChartEntry{
	{Code: "1000", Name: "Assets", AccountType: Asset, Description: "Resources owned by the company"},
	{Code: "1100", Name: "Current Assets", AccountType: Asset, ParentCode: "1000"},
	{Code: "1111", Name: "Cash", AccountType: Asset, ParentCode: "1100", Description: "Cash on hand"},
	{Code: "1112", Name: "Bank", AccountType: Asset, ParentCode: "1100", Description: "Balances held at banks"},
	{Code: "1120", Name: "Accounts Receivable", AccountType: Asset, ParentCode: "1100", Description: "Amounts owed by customers"},
	{Code: "1130", Name: "Inventory", AccountType: Asset, ParentCode: "1100", Description: "Goods held for sale"},
	{Code: "1140", Name: "GST Input Credit", AccountType: Asset, ParentCode: "1100", Description: "Tax paid on purchases, recoverable"},
	{Code: "1500", Name: "Fixed Assets", AccountType: Asset, ParentCode: "1000", Description: "Long-term tangible assets"},

	{Code: "2000", Name: "Liabilities", AccountType: Liability, Description: "Obligations owed to others"},
	{Code: "2110", Name: "Accounts Payable", AccountType: Liability, ParentCode: "2000", Description: "Amounts owed to suppliers"},
	{Code: "2120", Name: "GST Payable", AccountType: Liability, ParentCode: "2000", Description: "Tax collected on behalf of the tax authority"},
	{Code: "2130", Name: "Salaries Payable", AccountType: Liability, ParentCode: "2000", Description: "Net pay owed to employees"},
	{Code: "2140", Name: "Payroll Deductions Payable", AccountType: Liability, ParentCode: "2000", Description: "Statutory deductions withheld from pay"},

	{Code: "3000", Name: "Equity", AccountType: Equity},
	{Code: "3100", Name: "Owner's Capital", AccountType: Equity, ParentCode: "3000", Description: "Capital contributed by owners"},
	{Code: "3200", Name: "Retained Earnings", AccountType: Equity, ParentCode: "3000", Description: "Accumulated profits retained in the company"},
	{Code: "3900", Name: "Opening Balance Equity", AccountType: Equity, ParentCode: "3000", Description: "Offset for opening balances entered at setup"},

	{Code: "4000", Name: "Revenue", AccountType: Revenue},
	{Code: "4101", Name: "Sales", AccountType: Revenue, ParentCode: "4000", Description: "Income from goods and services sold"},
	{Code: "4102", Name: "Sales Returns", AccountType: Revenue, ParentCode: "4000"},

	{Code: "5000", Name: "Cost of Goods Sold", AccountType: CostOfGoodsSold, Description: "Direct cost of goods sold"},
	{Code: "5100", Name: "Purchases", AccountType: CostOfGoodsSold, ParentCode: "5000"},

	{Code: "6000", Name: "Operating Expenses", AccountType: Expense},
	{Code: "6100", Name: "Salaries and Wages", AccountType: Expense, ParentCode: "6000", Description: "Gross employee compensation"},
	{Code: "6200", Name: "Rent", AccountType: Expense, ParentCode: "6000"},
	{Code: "6300", Name: "Utilities", AccountType: Expense, ParentCode: "6000"},
	{Code: "6900", Name: "General Expenses", AccountType: Expense, ParentCode: "6000"},

	{Code: "7000", Name: "Other Income", AccountType: OtherIncome, Description: "Interest, discounts received and other non-operating income"},
	{Code: "8000", Name: "Other Expenses", AccountType: OtherExpense, Description: "Bank charges, write-offs and other non-operating expenses"},
}
