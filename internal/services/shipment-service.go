package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/interfaces"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

// StatusChanger is the narrow view of the transition engine that batch
// callers (transfer slip cascade) depend on.
type StatusChanger interface {
	ChangeStatus(qrCode, newStatus, actor string, notes *string, newImageURLs []string) (*domain.Shipment, error)
}

type ShipmentService interface {
	StatusChanger

	CreateShipment(input dto.CreateShipmentRequest, actor string) (*domain.Shipment, error)
	UpdateShipment(qrCode string, input dto.UpdateShipmentRequest, actor string) (*domain.Shipment, error)
	AppendImages(qrCode string, urls []string, actor string) (*domain.Shipment, error)

	GetByQRCode(qrCode string) (*domain.Shipment, error)
	GetByID(id uint) (*domain.Shipment, error)
	ListAll() ([]domain.Shipment, error)
	ListByStatus(status string) ([]domain.Shipment, error)
	ListActive() ([]domain.Shipment, error)
}

// keyedMutex serializes writers per qr_code. The historical behavior was
// last-write-wins between concurrent editors of the same shipment; this
// closes that race for the direct write path. Entries are reference-counted
// and dropped once the last holder releases, so the map does not grow with
// every qr_code the process has ever touched.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

type shipmentService struct {
	repo      repository.ShipmentRepository
	auditRepo repository.AuditRepository
	notifier  NotificationService
	sheets    interfaces.SheetSyncer
	producer  interfaces.ProducerHandler

	keys keyedMutex
	now  func() time.Time
}

func NewShipmentService(
	repo repository.ShipmentRepository,
	auditRepo repository.AuditRepository,
	notifier NotificationService,
	sheets interfaces.SheetSyncer,
	producer interfaces.ProducerHandler,
) ShipmentService {
	return &shipmentService{
		repo:      repo,
		auditRepo: auditRepo,
		notifier:  notifier,
		sheets:    sheets,
		producer:  producer,
		now:       time.Now,
	}
}

func (s *shipmentService) CreateShipment(input dto.CreateShipmentRequest, actor string) (*domain.Shipment, error) {
	qrCode := strings.TrimSpace(input.QRCode)
	imei := strings.TrimSpace(input.IMEI)
	deviceName := strings.TrimSpace(input.DeviceName)
	capacity := strings.TrimSpace(input.Capacity)
	supplier := strings.TrimSpace(input.Supplier)

	if qrCode == "" || imei == "" || deviceName == "" || capacity == "" || supplier == "" {
		return nil, errors.New("invalid inputs")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, errors.New("actor is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = domain.DefaultStatus
	}

	shipment := &domain.Shipment{
		QRCode:      qrCode,
		IMEI:        imei,
		DeviceName:  deviceName,
		Capacity:    capacity,
		Supplier:    supplier,
		RequestType: strings.TrimSpace(input.RequestType),
		StoreName:   input.StoreName,
		Notes:       input.Notes,
		CreatedBy:   actor,
	}
	shipment.AppendImageURLs(input.ImageURLs)
	shipment.ApplyStatus(status, s.now())

	created, err := s.repo.Create(shipment)
	if err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Created shipment: %s", created.QRCode)
	if err := s.auditRepo.Append(created.ID, domain.AuditActionCreated, nil, &summary, actor); err != nil {
		log.Printf("warning: audit append failed for shipment %s: %v", created.QRCode, err)
	}

	s.fireSideEffects(created, actor, true, false)

	return created, nil
}

// ChangeStatus applies a status change to the shipment identified by
// qrCode. Any status may follow any other status; the only validation is
// that the shipment exists. Derived timestamps come from the status
// side-effect table in domain.
func (s *shipmentService) ChangeStatus(qrCode, newStatus, actor string, notes *string, newImageURLs []string) (*domain.Shipment, error) {
	qrCode = strings.TrimSpace(qrCode)
	newStatus = strings.TrimSpace(newStatus)
	if qrCode == "" || newStatus == "" {
		return nil, errors.New("qr code and status are required")
	}

	unlock := s.keys.Lock(qrCode)
	defer unlock()

	shipment, err := s.repo.FindByQRCode(qrCode)
	if err != nil {
		return nil, err
	}

	oldStatus := shipment.Status

	shipment.ApplyStatus(newStatus, s.now())
	if notes != nil && strings.TrimSpace(*notes) != "" {
		shipment.Notes = notes
	}
	shipment.AppendImageURLs(newImageURLs)
	shipment.UpdatedBy = &actor

	if err := s.repo.Save(shipment); err != nil {
		return nil, err
	}

	if err := s.auditRepo.Append(shipment.ID, domain.AuditActionStatusChanged, &oldStatus, &newStatus, actor); err != nil {
		log.Printf("warning: audit append failed for shipment %s: %v", qrCode, err)
	}

	s.fireSideEffects(shipment, actor, false, false)

	return shipment, nil
}

// UpdateShipment is the direct-edit path: every non-nil field is applied
// and the whole mutation is summarized into one UPDATED audit entry.
func (s *shipmentService) UpdateShipment(qrCode string, input dto.UpdateShipmentRequest, actor string) (*domain.Shipment, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, errors.New("qr code is required")
	}

	unlock := s.keys.Lock(qrCode)
	defer unlock()

	shipment, err := s.repo.FindByQRCode(qrCode)
	if err != nil {
		return nil, err
	}

	// qr_code is the natural key: it never changes once the row exists.
	// Clients may resend the current value, anything else is rejected.
	if input.QRCode != nil && strings.TrimSpace(*input.QRCode) != shipment.QRCode {
		return nil, errors.New("qr code is immutable")
	}

	var changes []helper.FieldChange
	if input.IMEI != nil {
		shipment.IMEI = strings.TrimSpace(*input.IMEI)
		changes = append(changes, helper.FieldChange{Label: "IMEI", Value: shipment.IMEI})
	}
	if input.DeviceName != nil {
		shipment.DeviceName = strings.TrimSpace(*input.DeviceName)
		changes = append(changes, helper.FieldChange{Label: "Device", Value: shipment.DeviceName})
	}
	if input.Capacity != nil {
		shipment.Capacity = strings.TrimSpace(*input.Capacity)
		changes = append(changes, helper.FieldChange{Label: "Condition", Value: shipment.Capacity})
	}
	if input.Supplier != nil {
		shipment.Supplier = strings.TrimSpace(*input.Supplier)
		changes = append(changes, helper.FieldChange{Label: "Supplier", Value: shipment.Supplier})
	}
	if input.RequestType != nil {
		shipment.RequestType = strings.TrimSpace(*input.RequestType)
		changes = append(changes, helper.FieldChange{Label: "Request", Value: shipment.RequestType})
	}
	if input.StoreName != nil {
		shipment.StoreName = input.StoreName
		changes = append(changes, helper.FieldChange{Label: "Store", Value: *input.StoreName})
	}
	if input.Notes != nil {
		shipment.Notes = input.Notes
		changes = append(changes, helper.FieldChange{Label: "Notes", Value: *input.Notes})
	}
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		shipment.ApplyStatus(strings.TrimSpace(*input.Status), s.now())
		changes = append(changes, helper.FieldChange{Label: "Status", Value: shipment.Status})
	}

	if len(changes) == 0 {
		return nil, errors.New("nothing to update")
	}

	shipment.LastUpdated = s.now()
	shipment.UpdatedBy = &actor

	if err := s.repo.Save(shipment); err != nil {
		return nil, err
	}

	summary := helper.SummarizeChanges(changes)
	if err := s.auditRepo.Append(shipment.ID, domain.AuditActionUpdated, nil, &summary, actor); err != nil {
		log.Printf("warning: audit append failed for shipment %s: %v", shipment.QRCode, err)
	}

	s.fireSideEffects(shipment, actor, false, false)

	return shipment, nil
}

// AppendImages adds freshly uploaded attachment URLs to a shipment and
// pushes a follow-up notification into the existing thread.
func (s *shipmentService) AppendImages(qrCode string, urls []string, actor string) (*domain.Shipment, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, errors.New("qr code is required")
	}
	if len(urls) == 0 {
		return nil, errors.New("no image urls provided")
	}

	unlock := s.keys.Lock(qrCode)
	defer unlock()

	shipment, err := s.repo.FindByQRCode(qrCode)
	if err != nil {
		return nil, err
	}

	shipment.AppendImageURLs(urls)
	shipment.LastUpdated = s.now()
	shipment.UpdatedBy = &actor

	if err := s.repo.Save(shipment); err != nil {
		return nil, err
	}

	summary := fmt.Sprintf("Images: +%d", len(urls))
	if err := s.auditRepo.Append(shipment.ID, domain.AuditActionUpdated, nil, &summary, actor); err != nil {
		log.Printf("warning: audit append failed for shipment %s: %v", shipment.QRCode, err)
	}

	s.fireSideEffects(shipment, actor, false, true)

	return shipment, nil
}

// fireSideEffects runs the soft-fail side channels after a committed
// mutation: outward notification, spreadsheet sync, event publish. None of
// them can roll the mutation back; failures become warnings.
func (s *shipmentService) fireSideEffects(shipment *domain.Shipment, actor string, isNew, isImageUpdate bool) {
	if s.notifier != nil {
		res := s.notifier.NotifyIfEligible(shipment, isImageUpdate, isImageUpdate)
		if !res.Success && !res.Skipped {
			log.Printf("warning: notification failed for shipment %s: %s", shipment.QRCode, res.Error)
		}
	}

	if s.sheets != nil {
		if err := s.sheets.Sync(context.Background(), shipment.ID, isNew); err != nil {
			log.Printf("warning: sheet sync failed for shipment %s: %v", shipment.QRCode, err)
		}
	}

	if s.producer != nil {
		payload := fmt.Sprintf(
			`{"shipment_id":%d,"qr_code":"%s","status":"%s","actor":"%s","updated_at":"%s"}`,
			shipment.ID, shipment.QRCode, shipment.Status, actor, shipment.LastUpdated.Format(time.RFC3339),
		)
		key := "shipment.updated"
		if isNew {
			key = "shipment.created"
		}
		if err := s.producer.PublishMessage([]byte(key), []byte(payload)); err != nil {
			log.Printf("warning: event publish failed for shipment %s: %v", shipment.QRCode, err)
		}
	}
}

func (s *shipmentService) GetByQRCode(qrCode string) (*domain.Shipment, error) {
	qrCode = strings.TrimSpace(qrCode)
	if qrCode == "" {
		return nil, errors.New("qr code is required")
	}
	return s.repo.FindByQRCode(qrCode)
}

func (s *shipmentService) GetByID(id uint) (*domain.Shipment, error) {
	if id == 0 {
		return nil, errors.New("invalid shipment id")
	}
	return s.repo.FindByID(id)
}

func (s *shipmentService) ListAll() ([]domain.Shipment, error) {
	return s.repo.ListAll()
}

func (s *shipmentService) ListByStatus(status string) ([]domain.Shipment, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, errors.New("status is required")
	}
	return s.repo.ListByStatus(status)
}

func (s *shipmentService) ListActive() ([]domain.Shipment, error) {
	return s.repo.ListActive()
}
