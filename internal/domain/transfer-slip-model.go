package domain

import "time"

// Transfer slip statuses.
const (
	SlipStatusInTransit = "in-transit"
	SlipStatusCompleted = "completed"
)

// TransferSlip groups shipments for one physical transport run. A creator
// has at most one in-transit slip at a time; completion stamps it once and
// cascades a status change to every member shipment.
type TransferSlip struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TransferCode string     `gorm:"uniqueIndex;not null" json:"transfer_code"`
	Status       string     `gorm:"type:varchar(50);not null;default:in-transit" json:"status"`
	ImageURL     *string    `json:"image_url,omitempty"`
	CreatedBy    string     `gorm:"not null;index" json:"created_by"`
	CompletedBy  *string    `json:"completed_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Notes        *string    `gorm:"type:text" json:"notes,omitempty"`
}

// TransferSlipItem links one shipment into one slip. The composite unique
// index guards against the same shipment being added to a slip twice.
type TransferSlipItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TransferSlipID uint      `gorm:"not null;uniqueIndex:uidx_slip_shipment" json:"transfer_slip_id"`
	ShipmentID     uint      `gorm:"not null;uniqueIndex:uidx_slip_shipment" json:"shipment_id"`
	AddedAt        time.Time `gorm:"autoCreateTime" json:"added_at"`
}
