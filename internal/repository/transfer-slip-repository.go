package repository

import (
	"errors"
	"log"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"gorm.io/gorm"
)

type TransferSlipRepository interface {
	Create(slip *domain.TransferSlip) (*domain.TransferSlip, error)
	FindByID(id uint) (*domain.TransferSlip, error)
	FindActiveByCreator(createdBy string) (*domain.TransferSlip, error)
	Save(slip *domain.TransferSlip) error
	AddItem(slipID, shipmentID uint) error
	RemoveItem(slipID, shipmentID uint) error
	ListItems(slipID uint) ([]domain.TransferSlipItem, error)
	CountItems(slipID uint) (int64, error)
	ListAll() ([]domain.TransferSlip, error)
}

type transferSlipRepository struct {
	db *gorm.DB
}

func NewTransferSlipRepository(db *gorm.DB) TransferSlipRepository {
	return &transferSlipRepository{db: db}
}

func (r *transferSlipRepository) Create(slip *domain.TransferSlip) (*domain.TransferSlip, error) {
	if slip == nil {
		return nil, errors.New("nil transfer slip")
	}

	if err := r.db.Create(slip).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, DuplicateKeyError{Entity: "transfer slip", Key: slip.TransferCode}
		}
		log.Printf("create transfer slip error: %v", err)
		return nil, errors.New("failed to create transfer slip")
	}

	return slip, nil
}

func (r *transferSlipRepository) FindByID(id uint) (*domain.TransferSlip, error) {
	slip := &domain.TransferSlip{}

	if err := r.db.First(slip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Entity: "transfer slip", Key: shipmentKey(id)}
		}
		log.Printf("find transfer slip error: %v", err)
		return nil, errors.New("failed to find transfer slip")
	}

	return slip, nil
}

// FindActiveByCreator returns the creator's newest in-transit slip, or nil
// when they have none (not an error: the service lazily creates one).
func (r *transferSlipRepository) FindActiveByCreator(createdBy string) (*domain.TransferSlip, error) {
	slip := &domain.TransferSlip{}

	err := r.db.Where("created_by = ? AND status = ?", createdBy, domain.SlipStatusInTransit).
		Order("created_at DESC").First(slip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("find active transfer slip error: %v", err)
		return nil, errors.New("failed to find active transfer slip")
	}

	return slip, nil
}

func (r *transferSlipRepository) Save(slip *domain.TransferSlip) error {
	if slip == nil {
		return errors.New("nil transfer slip")
	}

	if err := r.db.Save(slip).Error; err != nil {
		log.Printf("save transfer slip error: %v", err)
		return errors.New("failed to save transfer slip")
	}
	return nil
}

func (r *transferSlipRepository) AddItem(slipID, shipmentID uint) error {
	item := &domain.TransferSlipItem{
		TransferSlipID: slipID,
		ShipmentID:     shipmentID,
	}

	if err := r.db.Create(item).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return AlreadyInSlipError{SlipID: slipID, ShipmentID: shipmentID}
		}
		log.Printf("add transfer slip item error: %v", err)
		return errors.New("failed to add shipment to transfer slip")
	}
	return nil
}

func (r *transferSlipRepository) RemoveItem(slipID, shipmentID uint) error {
	res := r.db.Where("transfer_slip_id = ? AND shipment_id = ?", slipID, shipmentID).
		Delete(&domain.TransferSlipItem{})
	if res.Error != nil {
		log.Printf("remove transfer slip item error: %v", res.Error)
		return errors.New("failed to remove shipment from transfer slip")
	}
	if res.RowsAffected == 0 {
		return NotFoundError{Entity: "transfer slip item", Key: shipmentKey(shipmentID)}
	}
	return nil
}

func (r *transferSlipRepository) ListItems(slipID uint) ([]domain.TransferSlipItem, error) {
	var items []domain.TransferSlipItem

	if err := r.db.Where("transfer_slip_id = ?", slipID).
		Order("added_at ASC, id ASC").Find(&items).Error; err != nil {
		log.Printf("list transfer slip items error: %v", err)
		return nil, errors.New("failed to list transfer slip items")
	}
	return items, nil
}

func (r *transferSlipRepository) CountItems(slipID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&domain.TransferSlipItem{}).
		Where("transfer_slip_id = ?", slipID).Count(&count).Error; err != nil {
		log.Printf("count transfer slip items error: %v", err)
		return 0, errors.New("failed to count transfer slip items")
	}
	return count, nil
}

func (r *transferSlipRepository) ListAll() ([]domain.TransferSlip, error) {
	var slips []domain.TransferSlip

	if err := r.db.Order("created_at DESC").Find(&slips).Error; err != nil {
		log.Printf("list transfer slips error: %v", err)
		return nil, errors.New("failed to list transfer slips")
	}
	return slips, nil
}
