package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is a node in the chart of accounts. Codes are hierarchical by
// prefix: 601 is a child of 60, which is a child of class 6.
type Account struct {
	AccountID   string      `json:"accountID"` // Primary key (UUID)
	Code        string      `json:"code"`      // Unique chart code, e.g. "512"
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	Class       int         `json:"class"`    // Top-level digit grouping
	IsActive    bool        `json:"isActive"` // Soft-disable; history stays queryable
	AuditFields
}

// ParentCode returns the code of the account's parent in the hierarchy,
// or "" for a top-level (single digit) code.
func (a Account) ParentCode() string {
	if len(a.Code) <= 1 {
		return ""
	}
	return a.Code[:len(a.Code)-1]
}

// ClassTypeMapping maps a top-level class digit to the account type every
// account in that class must carry. The mapping is immutable configuration:
// it is fixed at construction and never changes for a running ledger.
type ClassTypeMapping map[int]AccountType

// DefaultClassTypeMapping follows the French plan comptable général grouping
// used by the back-office: 1 capitaux, 2 immobilisations, 3 stocks,
// 4 tiers, 5 financier, 6 charges, 7 produits.
func DefaultClassTypeMapping() ClassTypeMapping {
	return ClassTypeMapping{
		1: Equity,
		2: Asset,
		3: Asset,
		4: Liability,
		5: Asset,
		6: Expense,
		7: Revenue,
	}
}

// TypeForClass returns the configured account type for a class digit.
func (m ClassTypeMapping) TypeForClass(class int) (AccountType, bool) {
	t, ok := m[class]
	return t, ok
}
