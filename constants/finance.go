package constants

// FinancialEntryType distinguishes money coming into a project from money
// going out.
type FinancialEntryType string

const (
	EntryTypeRevenue FinancialEntryType = "REVENUE"
	EntryTypeCost    FinancialEntryType = "COST"
)

// DocumentType classifies financial documents.
type DocumentType string

const (
	DocTypeInvoice DocumentType = "INVOICE"
	DocTypeBill    DocumentType = "BILL"
)
