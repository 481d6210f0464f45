package dto

import "github.com/curasoft/hospital_billing_app/internal/core/domain"

// Actor is the validated caller context handed in by the gateway: which
// hospital/branch the operation belongs to, who is acting, and what they are
// allowed to do. The core never derives capabilities from user ids.
type Actor struct {
	HospitalID  string             `json:"hospitalID"`
	BranchID    string             `json:"branchID"`
	UserID      string             `json:"userID"`
	Permissions domain.Permissions `json:"permissions"`
}
