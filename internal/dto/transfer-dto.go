package dto

type AddSlipItemRequest struct {
	QRCode string `json:"qr_code"`
}

type CompleteSlipRequest struct {
	TargetStatus string  `json:"target_status"`
	Notes        *string `json:"notes,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
}

// BatchResult reports the outcome of a slip completion cascade. Member
// updates succeed or fail independently; there is no rollback.
type BatchResult struct {
	UpdatedCount int      `json:"updated_count"`
	FailedCount  int      `json:"failed_count"`
	Failures     []string `json:"failures,omitempty"`
}

type SlipSummary struct {
	ID           uint    `json:"id"`
	TransferCode string  `json:"transfer_code"`
	Status       string  `json:"status"`
	CreatedBy    string  `json:"created_by"`
	CompletedBy  *string `json:"completed_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
	ItemCount    int     `json:"item_count"`
}
