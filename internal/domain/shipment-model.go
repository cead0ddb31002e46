package domain

import (
	"strings"
	"time"
)

// Shipment statuses. The set is open-ended on purpose: rows created by older
// versions of the app may carry values outside this list, and no transition
// graph is enforced between them.
const (
	StatusReceived            = "received"
	StatusInWarehouse         = "in-warehouse"
	StatusWarehouseProcessing = "warehouse-processing"
	StatusSentToSupplier      = "sent-to-supplier"
	StatusRepairStarted       = "repair-started"
	StatusRepairCompleted     = "repair-completed"
	StatusInTransit           = "in-transit"
	StatusProcessing          = "processing"
	StatusAwaitingReturn      = "awaiting-return"
	StatusCompleted           = "completed"
)

const DefaultStatus = StatusReceived

// StatusValues is the list shown in pickers, ordered by workflow stage.
var StatusValues = []string{
	StatusReceived,
	StatusInWarehouse,
	StatusWarehouseProcessing,
	StatusSentToSupplier,
	StatusRepairStarted,
	StatusRepairCompleted,
	StatusInTransit,
	StatusProcessing,
	StatusAwaitingReturn,
	StatusCompleted,
}

// ActiveStatuses are the statuses counted as still in the workflow.
var ActiveStatuses = []string{
	StatusReceived,
	StatusInWarehouse,
	StatusWarehouseProcessing,
	StatusSentToSupplier,
	StatusRepairStarted,
	StatusRepairCompleted,
	StatusInTransit,
	StatusProcessing,
	StatusAwaitingReturn,
}

// imageURLSeparator joins multiple attachment URLs into the single
// image_url column. Matches what older data already contains.
const imageURLSeparator = ";"

type Shipment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	QRCode      string  `gorm:"uniqueIndex;not null" json:"qr_code"`
	IMEI        string  `gorm:"not null" json:"imei"`
	DeviceName  string  `gorm:"not null" json:"device_name"`
	Capacity    string  `gorm:"not null" json:"capacity"` // fault / condition description
	Supplier    string  `gorm:"not null" json:"supplier"`
	RequestType string  `gorm:"type:varchar(100)" json:"request_type"`
	StoreName   *string `json:"store_name,omitempty"`
	Status      string  `gorm:"type:varchar(50);not null;default:received" json:"status"`
	Notes       *string `gorm:"type:text" json:"notes,omitempty"`

	// ImageURL holds every attachment URL joined by ";". It only grows:
	// new uploads append, never replace.
	ImageURL *string `json:"image_url,omitempty"`

	// TelegramMessageID is the idempotency key for outward notification.
	TelegramMessageID *int64 `json:"telegram_message_id,omitempty"`

	SentTime             time.Time  `gorm:"autoCreateTime" json:"sent_time"`
	ReceivedTime         *time.Time `json:"received_time,omitempty"`
	RepairStartTime      *time.Time `json:"repair_start_time,omitempty"`
	RepairCompletionTime *time.Time `json:"repair_completion_time,omitempty"`
	CompletedTime        *time.Time `json:"completed_time,omitempty"`
	LastUpdated          time.Time  `json:"last_updated"`

	CreatedBy string  `gorm:"not null" json:"created_by"`
	UpdatedBy *string `json:"updated_by,omitempty"`
}

// ImageURLs splits the joined image_url column back into a list,
// dropping empty segments.
func (s *Shipment) ImageURLs() []string {
	if s.ImageURL == nil || strings.TrimSpace(*s.ImageURL) == "" {
		return nil
	}
	parts := strings.Split(*s.ImageURL, imageURLSeparator)
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

// AppendImageURLs adds new attachment URLs to the shipment. Existing URLs
// are kept untouched.
func (s *Shipment) AppendImageURLs(urls []string) {
	merged := s.ImageURLs()
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" {
			merged = append(merged, u)
		}
	}
	if len(merged) == 0 {
		return
	}
	joined := strings.Join(merged, imageURLSeparator)
	s.ImageURL = &joined
}

// statusTimestampRule describes the timestamp side effect of entering a
// status. Overwrite=false means the field is only set the first time the
// shipment reaches that status; Overwrite=true refreshes it on every
// re-entry (matches the historical behavior for repair/completion times).
type statusTimestampRule struct {
	Field     func(s *Shipment) **time.Time
	Overwrite bool
}

var statusTimestampRules = map[string]statusTimestampRule{
	StatusReceived: {
		Field: func(s *Shipment) **time.Time { return &s.ReceivedTime },
	},
	StatusRepairStarted: {
		Field:     func(s *Shipment) **time.Time { return &s.RepairStartTime },
		Overwrite: true,
	},
	StatusRepairCompleted: {
		Field:     func(s *Shipment) **time.Time { return &s.RepairCompletionTime },
		Overwrite: true,
	},
	StatusCompleted: {
		Field:     func(s *Shipment) **time.Time { return &s.CompletedTime },
		Overwrite: true,
	},
}

// ApplyStatus sets the new status and its derived timestamps on the
// shipment. last_updated is always refreshed.
func (s *Shipment) ApplyStatus(newStatus string, now time.Time) {
	s.Status = newStatus
	if rule, ok := statusTimestampRules[newStatus]; ok {
		field := rule.Field(s)
		if *field == nil || rule.Overwrite {
			t := now
			*field = &t
		}
	}
	s.LastUpdated = now
}
