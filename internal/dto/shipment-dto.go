package dto

type CreateShipmentRequest struct {
	QRCode      string   `json:"qr_code"`
	IMEI        string   `json:"imei"`
	DeviceName  string   `json:"device_name"`
	Capacity    string   `json:"capacity"`
	Supplier    string   `json:"supplier"`
	RequestType string   `json:"request_type"`
	StoreName   *string  `json:"store_name,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Status      string   `json:"status,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

type ChangeStatusRequest struct {
	Status    string   `json:"status"`
	Notes     *string  `json:"notes,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// UpdateShipmentRequest is a PATCH body: nil means "leave unchanged".
type UpdateShipmentRequest struct {
	QRCode      *string `json:"qr_code,omitempty"`
	IMEI        *string `json:"imei,omitempty"`
	DeviceName  *string `json:"device_name,omitempty"`
	Capacity    *string `json:"capacity,omitempty"`
	Supplier    *string `json:"supplier,omitempty"`
	RequestType *string `json:"request_type,omitempty"`
	StoreName   *string `json:"store_name,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}
