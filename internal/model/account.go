package model

// AccountType classifies accounts held in the store.
type AccountType string

const (
	AccountTypeCreditCard AccountType = "Credit Card"
	AccountTypeChecking   AccountType = "Checking"
	AccountTypeSavings    AccountType = "Savings"
)

// Account is a store account. Alias matches the stable key produced by
// account resolution.
type Account struct {
	ID    int
	Alias string
	Type  AccountType
	Name  string
}
