package domain

// AccountRole is a semantic role in the chart of accounts. Posting code speaks
// in roles; the per-hospital mapping decides which concrete ledger account a
// role lands on.
type AccountRole string

const (
	RoleAccountsReceivable AccountRole = "ar"
	RoleAccountsPayable    AccountRole = "ap"
	RoleBank               AccountRole = "bank"
	RoleCash               AccountRole = "cash"
	RoleRevenue            AccountRole = "revenue"
	RoleCGSTPayable        AccountRole = "cgst_payable"
	RoleSGSTPayable        AccountRole = "sgst_payable"
	RoleIGSTPayable        AccountRole = "igst_payable"
	RoleGSTInput           AccountRole = "gst_input"
	RoleInventory          AccountRole = "inventory"
)

// LedgerAccount is a concrete GL account owned by a hospital.
type LedgerAccount struct {
	AccountID  string `json:"accountID"` // Primary Key (UUID)
	HospitalID string `json:"hospitalID"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
	AuditFields
}

// AccountMapping binds one role to one ledger account for a hospital.
type AccountMapping struct {
	HospitalID string      `json:"hospitalID"`
	Role       AccountRole `json:"role"`
	AccountID  string      `json:"accountID"`
	AuditFields
}
