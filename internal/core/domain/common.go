package domain

import "time"

// AuditFields holds the timestamps every persisted record carries.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
