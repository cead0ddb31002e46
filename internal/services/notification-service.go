package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/interfaces"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

// notifyEligibleStatuses is the fixed set of receipt-confirmed statuses
// that trigger an outward alert.
var notifyEligibleStatuses = map[string]bool{
	domain.StatusReceived: true,
}

type NotificationService interface {
	// NotifyIfEligible sends at most one alert per shipment reaching a
	// receipt-confirmed status. force resends; isImageUpdate pushes a
	// follow-up into the same thread when new photos arrived.
	NotifyIfEligible(shipment *domain.Shipment, force, isImageUpdate bool) dto.NotifyResult
	// NotifySlipCompleted sends one alert per completed transfer slip,
	// not one per member shipment.
	NotifySlipCompleted(slip *domain.TransferSlip, shipments []domain.Shipment) dto.NotifyResult
}

type notificationService struct {
	notifier interfaces.Notifier
	repo     repository.ShipmentRepository
}

func NewNotificationService(notifier interfaces.Notifier, repo repository.ShipmentRepository) NotificationService {
	return &notificationService{
		notifier: notifier,
		repo:     repo,
	}
}

func (s *notificationService) NotifyIfEligible(shipment *domain.Shipment, force, isImageUpdate bool) dto.NotifyResult {
	if shipment == nil || s.notifier == nil {
		return dto.NotifyResult{Skipped: true}
	}
	if !notifyEligibleStatuses[shipment.Status] {
		return dto.NotifyResult{Skipped: true}
	}

	urls := shipment.ImageURLs()
	alreadySent := shipment.TelegramMessageID != nil
	if alreadySent && !force && !(isImageUpdate && len(urls) > 0) {
		return dto.NotifyResult{Skipped: true}
	}

	text := formatShipmentMessage(shipment, isImageUpdate)
	ctx := context.Background()

	var msgID int64
	var err error
	if len(urls) > 0 {
		// first photo carries the caption, the rest follow bare
		msgID, err = s.notifier.SendPhoto(ctx, urls[0], text)
		if err == nil {
			for _, u := range urls[1:] {
				if _, followErr := s.notifier.SendPhoto(ctx, u, ""); followErr != nil {
					log.Printf("warning: follow-up photo failed for shipment %s: %v", shipment.QRCode, followErr)
				}
			}
		} else {
			// photo channel failed: degrade to text with the links inlined
			var links []string
			for i, u := range urls {
				links = append(links, fmt.Sprintf("Photo %d: %s", i+1, u))
			}
			msgID, err = s.notifier.SendText(ctx, text+"\n\n"+strings.Join(links, "\n"))
		}
	} else {
		msgID, err = s.notifier.SendText(ctx, text)
	}

	if err != nil {
		return dto.NotifyResult{Success: false, Error: err.Error()}
	}

	shipment.TelegramMessageID = &msgID
	if saveErr := s.repo.Save(shipment); saveErr != nil {
		log.Printf("warning: failed to persist message ref for shipment %s: %v", shipment.QRCode, saveErr)
	}

	return dto.NotifyResult{Success: true, MessageID: msgID}
}

func (s *notificationService) NotifySlipCompleted(slip *domain.TransferSlip, shipments []domain.Shipment) dto.NotifyResult {
	if slip == nil || s.notifier == nil {
		return dto.NotifyResult{Skipped: true}
	}

	var lines []string
	for _, shipment := range shipments {
		lines = append(lines, fmt.Sprintf("%s: %s", shipment.QRCode, helper.MaskIdentifier(shipment.IMEI)))
	}

	transferTime := slip.CreatedAt
	if slip.CompletedAt != nil {
		transferTime = *slip.CompletedAt
	}
	transporter := slip.CreatedBy
	if slip.CompletedBy != nil {
		transporter = *slip.CompletedBy
	}

	text := fmt.Sprintf(
		"<b>Transfer Slip Completed</b>\nCode: <code>%s</code>\nTransferred at: %s\nTransferred by: %s\nDevices: %d\n\n<b>Device IMEIs:</b>\n%s",
		slip.TransferCode,
		transferTime.Format(time.DateTime),
		transporter,
		len(shipments),
		strings.Join(lines, "\n"),
	)
	if slip.Notes != nil && strings.TrimSpace(*slip.Notes) != "" {
		text += "\n\nNotes: " + *slip.Notes
	}

	ctx := context.Background()

	var err error
	var msgID int64
	if slip.ImageURL != nil && strings.TrimSpace(*slip.ImageURL) != "" {
		msgID, err = s.notifier.SendPhoto(ctx, *slip.ImageURL, text)
	} else {
		msgID, err = s.notifier.SendText(ctx, text)
	}
	if err != nil {
		return dto.NotifyResult{Success: false, Error: err.Error()}
	}

	return dto.NotifyResult{Success: true, MessageID: msgID}
}

func formatShipmentMessage(shipment *domain.Shipment, isImageUpdate bool) string {
	header := "Shipment Received"
	if isImageUpdate {
		header = "Image Update"
	}

	notes := ""
	if shipment.Notes != nil {
		notes = *shipment.Notes
	}
	receivedTime := ""
	if shipment.ReceivedTime != nil {
		receivedTime = shipment.ReceivedTime.Format(time.DateTime)
	}

	return fmt.Sprintf(
		"<b>%s</b>\nQR: %s\nIMEI: %s\nDevice: %s\nCondition: %s\nSupplier: %s\nStatus: %s\nSent: %s\nReceived: %s\nNotes: %s",
		header,
		shipment.QRCode,
		shipment.IMEI,
		shipment.DeviceName,
		shipment.Capacity,
		shipment.Supplier,
		shipment.Status,
		shipment.SentTime.Format(time.DateTime),
		receivedTime,
		notes,
	)
}
