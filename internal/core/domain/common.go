package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// CreatedBy / LastUpdatedBy carry the explicit actor passed to each mutating call.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NewAuditFields stamps both the created and last-updated pairs with the same actor and time.
func NewAuditFields(actor string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor,
		LastUpdatedAt: now,
		LastUpdatedBy: actor,
	}
}
