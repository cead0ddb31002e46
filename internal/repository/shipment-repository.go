package repository

import (
	"errors"
	"log"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"gorm.io/gorm"
)

type ShipmentRepository interface {
	Create(shipment *domain.Shipment) (*domain.Shipment, error)
	FindByQRCode(qrCode string) (*domain.Shipment, error)
	FindByID(id uint) (*domain.Shipment, error)
	FindByIDs(ids []uint) ([]domain.Shipment, error)
	Save(shipment *domain.Shipment) error
	ListAll() ([]domain.Shipment, error)
	ListByStatus(status string) ([]domain.Shipment, error)
	ListActive() ([]domain.Shipment, error)
	ListStale(status string, before time.Time, excludeStatus string) ([]domain.Shipment, error)
	UpdateStatusBatch(ids []uint, newStatus, updatedBy string, now time.Time) (int64, error)
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) Create(shipment *domain.Shipment) (*domain.Shipment, error) {
	if shipment == nil {
		return nil, errors.New("nil shipment")
	}

	if err := r.db.Create(shipment).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, DuplicateKeyError{Entity: "shipment", Key: shipment.QRCode}
		}
		log.Printf("create shipment error: %v", err)
		return nil, errors.New("failed to create shipment")
	}

	return shipment, nil
}

func (r *shipmentRepository) FindByQRCode(qrCode string) (*domain.Shipment, error) {
	shipment := &domain.Shipment{}

	if err := r.db.First(shipment, "qr_code = ?", qrCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Entity: "shipment", Key: qrCode}
		}
		log.Printf("find shipment by qr code error: %v", err)
		return nil, errors.New("failed to find shipment by qr code")
	}

	return shipment, nil
}

func (r *shipmentRepository) FindByID(id uint) (*domain.Shipment, error) {
	shipment := &domain.Shipment{}

	if err := r.db.First(shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Entity: "shipment", Key: shipmentKey(id)}
		}
		log.Printf("find shipment by id error: %v", err)
		return nil, errors.New("failed to find shipment by id")
	}

	return shipment, nil
}

func (r *shipmentRepository) FindByIDs(ids []uint) ([]domain.Shipment, error) {
	var shipments []domain.Shipment
	if len(ids) == 0 {
		return shipments, nil
	}

	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&shipments).Error; err != nil {
		log.Printf("find shipments by ids error: %v", err)
		return nil, errors.New("failed to find shipments")
	}
	return shipments, nil
}

func (r *shipmentRepository) Save(shipment *domain.Shipment) error {
	if shipment == nil {
		return errors.New("nil shipment")
	}

	if err := r.db.Save(shipment).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return DuplicateKeyError{Entity: "shipment", Key: shipment.QRCode}
		}
		log.Printf("save shipment error: %v", err)
		return errors.New("failed to save shipment")
	}
	return nil
}

func (r *shipmentRepository) ListAll() ([]domain.Shipment, error) {
	var shipments []domain.Shipment

	if err := r.db.Order("sent_time DESC").Find(&shipments).Error; err != nil {
		log.Printf("list shipments error: %v", err)
		return nil, errors.New("failed to list shipments")
	}
	return shipments, nil
}

func (r *shipmentRepository) ListByStatus(status string) ([]domain.Shipment, error) {
	var shipments []domain.Shipment

	if err := r.db.Where("status = ?", status).Order("sent_time DESC").Find(&shipments).Error; err != nil {
		log.Printf("list shipments by status error: %v", err)
		return nil, errors.New("failed to list shipments by status")
	}
	return shipments, nil
}

func (r *shipmentRepository) ListActive() ([]domain.Shipment, error) {
	var shipments []domain.Shipment

	if err := r.db.Where("status IN ?", domain.ActiveStatuses).
		Order("last_updated DESC").Find(&shipments).Error; err != nil {
		log.Printf("list active shipments error: %v", err)
		return nil, errors.New("failed to list active shipments")
	}
	return shipments, nil
}

// ListStale returns shipments sitting in the given status with no mutation
// since `before`. Rows already in excludeStatus are filtered out so a sweep
// rule never re-selects what it already escalated.
func (r *shipmentRepository) ListStale(status string, before time.Time, excludeStatus string) ([]domain.Shipment, error) {
	var shipments []domain.Shipment

	if err := r.db.
		Where("status = ? AND status <> ? AND last_updated < ?", status, excludeStatus, before).
		Find(&shipments).Error; err != nil {
		log.Printf("list stale shipments error: %v", err)
		return nil, errors.New("failed to list stale shipments")
	}
	return shipments, nil
}

// UpdateStatusBatch applies one escalation rule as a single set-based
// UPDATE instead of a per-row loop.
func (r *shipmentRepository) UpdateStatusBatch(ids []uint, newStatus, updatedBy string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.Model(&domain.Shipment{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":       newStatus,
			"updated_by":   updatedBy,
			"last_updated": now,
		})
	if res.Error != nil {
		log.Printf("batch status update error: %v", res.Error)
		return 0, errors.New("failed to batch update shipment status")
	}
	return res.RowsAffected, nil
}
