package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// Permissions is the capability set granted to the caller of an operation.
// It is injected per call by the gateway; there are no magic user ids.
type Permissions struct {
	CanPostDocuments    bool `json:"canPostDocuments"`
	CanReplanPlans      bool `json:"canReplanPlans"`
	CanDiscontinuePlans bool `json:"canDiscontinuePlans"`
}
