package sheets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/repository"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client mirrors shipment rows into a Google Sheet. Every call is
// best-effort: the caller logs a warning and moves on if it fails.
type Client struct {
	spreadsheetID string
	sheetRange    string
	credentials   string
	repo          repository.ShipmentRepository
}

func New(spreadsheetID, credentialsFile string, repo repository.ShipmentRepository) *Client {
	return &Client{
		spreadsheetID: spreadsheetID,
		sheetRange:    "Shipments!A:P",
		credentials:   credentialsFile,
		repo:          repo,
	}
}

func (c *Client) Sync(ctx context.Context, shipmentID uint, isNew bool) error {
	if c.spreadsheetID == "" || c.credentials == "" {
		return errors.New("sheets sync is not configured")
	}

	shipment, err := c.repo.FindByID(shipmentID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(c.credentials))
	if err != nil {
		return fmt.Errorf("sheets service init: %w", err)
	}

	row := shipmentRow(shipment)
	values := &sheets.ValueRange{Values: [][]interface{}{row}}

	// new rows append; existing rows get re-appended and deduped by the
	// sheet itself (the sheet is a mirror, not a source of truth)
	_, err = svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetRange, values).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}

	log.Printf("synced shipment %s to sheet (new=%v)", shipment.QRCode, isNew)
	return nil
}

func shipmentRow(s *domain.Shipment) []interface{} {
	notes := ""
	if s.Notes != nil {
		notes = *s.Notes
	}
	storeName := ""
	if s.StoreName != nil {
		storeName = *s.StoreName
	}
	receivedTime := ""
	if s.ReceivedTime != nil {
		receivedTime = s.ReceivedTime.Format(time.RFC3339)
	}
	completedTime := ""
	if s.CompletedTime != nil {
		completedTime = s.CompletedTime.Format(time.RFC3339)
	}
	updatedBy := ""
	if s.UpdatedBy != nil {
		updatedBy = *s.UpdatedBy
	}
	imageURL := ""
	if s.ImageURL != nil {
		imageURL = *s.ImageURL
	}

	return []interface{}{
		s.ID,
		s.QRCode,
		s.IMEI,
		s.DeviceName,
		s.Capacity,
		s.Supplier,
		s.RequestType,
		storeName,
		s.Status,
		s.SentTime.Format(time.RFC3339),
		receivedTime,
		completedTime,
		notes,
		imageURL,
		s.CreatedBy,
		updatedBy,
	}
}
