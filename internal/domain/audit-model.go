package domain

import "time"

// Audit actions. Stored as plain strings so history written by older
// versions stays readable.
const (
	AuditActionCreated       = "CREATED"
	AuditActionStatusChanged = "STATUS_CHANGED"
	AuditActionUpdated       = "UPDATED"
)

// AuditEntry is one immutable record of a shipment mutation. Rows are only
// ever appended; retention trimming deletes whole rows, never edits them.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ShipmentID uint      `gorm:"not null;index" json:"shipment_id"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	OldValue   *string   `gorm:"type:text" json:"old_value,omitempty"`
	NewValue   *string   `gorm:"type:text" json:"new_value,omitempty"`
	ChangedBy  string    `gorm:"not null" json:"changed_by"`
	Timestamp  time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
