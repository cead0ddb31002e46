package interfaces

import "context"

// Notifier is the outward alert channel. Both methods return the external
// message reference used for idempotency checks.
type Notifier interface {
	SendText(ctx context.Context, msg string) (int64, error)
	SendPhoto(ctx context.Context, photoURL string, caption string) (int64, error)
}

// SheetSyncer mirrors shipment rows into an external spreadsheet.
// Invoked best-effort after every core mutation; failures are swallowed
// by callers.
type SheetSyncer interface {
	Sync(ctx context.Context, shipmentID uint, isNew bool) error
}
