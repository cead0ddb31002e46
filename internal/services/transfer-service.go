package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

type TransferService interface {
	// ActiveSlip returns the creator's current in-transit slip, creating
	// one lazily when none exists.
	ActiveSlip(createdBy string) (*domain.TransferSlip, error)
	AddItem(slipID, shipmentID uint) error
	RemoveItem(slipID, shipmentID uint) error
	Complete(slipID uint, actor string, imageURL *string, targetStatus string, notes *string) (*dto.BatchResult, error)
	Get(slipID uint) (*domain.TransferSlip, []domain.Shipment, error)
	ListAll() ([]dto.SlipSummary, error)
}

type transferService struct {
	repo         repository.TransferSlipRepository
	shipmentRepo repository.ShipmentRepository
	changer      StatusChanger
	notifier     NotificationService

	now func() time.Time
}

func NewTransferService(
	repo repository.TransferSlipRepository,
	shipmentRepo repository.ShipmentRepository,
	changer StatusChanger,
	notifier NotificationService,
) TransferService {
	return &transferService{
		repo:         repo,
		shipmentRepo: shipmentRepo,
		changer:      changer,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *transferService) ActiveSlip(createdBy string) (*domain.TransferSlip, error) {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		return nil, errors.New("creator is required")
	}

	slip, err := s.repo.FindActiveByCreator(createdBy)
	if err != nil {
		return nil, err
	}
	if slip != nil {
		return slip, nil
	}

	slip = &domain.TransferSlip{
		TransferCode: fmt.Sprintf("TC%s", s.now().Format("20060102150405")),
		Status:       domain.SlipStatusInTransit,
		CreatedBy:    createdBy,
	}
	return s.repo.Create(slip)
}

func (s *transferService) AddItem(slipID, shipmentID uint) error {
	if slipID == 0 || shipmentID == 0 {
		return errors.New("invalid slip or shipment id")
	}

	slip, err := s.repo.FindByID(slipID)
	if err != nil {
		return err
	}
	if slip.Status == domain.SlipStatusCompleted {
		return repository.SlipCompletedError{SlipID: slipID}
	}

	return s.repo.AddItem(slipID, shipmentID)
}

func (s *transferService) RemoveItem(slipID, shipmentID uint) error {
	if slipID == 0 || shipmentID == 0 {
		return errors.New("invalid slip or shipment id")
	}

	slip, err := s.repo.FindByID(slipID)
	if err != nil {
		return err
	}
	if slip.Status == domain.SlipStatusCompleted {
		return repository.SlipCompletedError{SlipID: slipID}
	}

	return s.repo.RemoveItem(slipID, shipmentID)
}

// Complete stamps the slip completed, then cascades targetStatus to every
// member shipment through the transition engine. The cascade is not
// transactional: each member succeeds or fails on its own, and the slip
// stays completed either way.
func (s *transferService) Complete(slipID uint, actor string, imageURL *string, targetStatus string, notes *string) (*dto.BatchResult, error) {
	targetStatus = strings.TrimSpace(targetStatus)
	if targetStatus == "" {
		return nil, errors.New("target status is required")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, errors.New("actor is required")
	}

	slip, err := s.repo.FindByID(slipID)
	if err != nil {
		return nil, err
	}
	if slip.Status == domain.SlipStatusCompleted {
		return nil, repository.SlipCompletedError{SlipID: slipID}
	}

	items, err := s.repo.ListItems(slipID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("transfer slip has no shipments")
	}

	now := s.now()
	slip.Status = domain.SlipStatusCompleted
	slip.CompletedBy = &actor
	slip.CompletedAt = &now
	if imageURL != nil && strings.TrimSpace(*imageURL) != "" {
		slip.ImageURL = imageURL
	}
	if notes != nil && strings.TrimSpace(*notes) != "" {
		slip.Notes = notes
	}
	if err := s.repo.Save(slip); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ShipmentID)
	}
	shipments, err := s.shipmentRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchResult{}
	for _, shipment := range shipments {
		if _, err := s.changer.ChangeStatus(shipment.QRCode, targetStatus, actor, nil, nil); err != nil {
			log.Printf("warning: cascade to shipment %s failed for slip %s: %v", shipment.QRCode, slip.TransferCode, err)
			result.FailedCount++
			result.Failures = append(result.Failures, shipment.QRCode)
			continue
		}
		result.UpdatedCount++
	}

	if s.notifier != nil {
		res := s.notifier.NotifySlipCompleted(slip, shipments)
		if !res.Success && !res.Skipped {
			log.Printf("warning: slip notification failed for %s: %s", slip.TransferCode, res.Error)
		}
	}

	return result, nil
}

func (s *transferService) Get(slipID uint) (*domain.TransferSlip, []domain.Shipment, error) {
	slip, err := s.repo.FindByID(slipID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.repo.ListItems(slipID)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ShipmentID)
	}
	shipments, err := s.shipmentRepo.FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}

	return slip, shipments, nil
}

func (s *transferService) ListAll() ([]dto.SlipSummary, error) {
	slips, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	out := make([]dto.SlipSummary, 0, len(slips))
	for _, slip := range slips {
		count, err := s.repo.CountItems(slip.ID)
		if err != nil {
			return nil, err
		}

		summary := dto.SlipSummary{
			ID:           slip.ID,
			TransferCode: slip.TransferCode,
			Status:       slip.Status,
			CreatedBy:    slip.CreatedBy,
			CompletedBy:  slip.CompletedBy,
			CreatedAt:    slip.CreatedAt.Format(time.RFC3339),
			ItemCount:    int(count),
		}
		if slip.CompletedAt != nil {
			completedAt := slip.CompletedAt.Format(time.RFC3339)
			summary.CompletedAt = &completedAt
		}
		out = append(out, summary)
	}
	return out, nil
}
