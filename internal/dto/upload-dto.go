package dto

// UploadTask is one attachment to push to the blob store. Index ties the
// result back to the caller's original ordering.
type UploadTask struct {
	Bytes    []byte
	Filename string
	MimeType string
	Index    int
}

// UploadResult mirrors one UploadTask. Exactly one of URL / Err is
// meaningful depending on Success.
type UploadResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Err     error  `json:"-"`
}

// NotifyResult is the soft-fail outcome of an outward notification. The
// mutation that triggered it is already committed either way.
type NotifyResult struct {
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped"`
	MessageID int64  `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
