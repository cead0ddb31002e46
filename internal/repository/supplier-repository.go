package repository

import (
	"errors"
	"log"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	ListActive() ([]domain.Supplier, error)
	ListAll() ([]domain.Supplier, error)
	Add(supplier *domain.Supplier) (*domain.Supplier, error)
	Update(supplier *domain.Supplier) error
	Deactivate(id uint) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) ListActive() ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	if err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&suppliers).Error; err != nil {
		log.Printf("list active suppliers error: %v", err)
		return nil, errors.New("failed to list suppliers")
	}
	return suppliers, nil
}

func (r *supplierRepository) ListAll() ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	if err := r.db.Order("name ASC").Find(&suppliers).Error; err != nil {
		log.Printf("list suppliers error: %v", err)
		return nil, errors.New("failed to list suppliers")
	}
	return suppliers, nil
}

func (r *supplierRepository) Add(supplier *domain.Supplier) (*domain.Supplier, error) {
	if supplier == nil {
		return nil, errors.New("nil supplier")
	}

	if err := r.db.Create(supplier).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, DuplicateKeyError{Entity: "supplier", Key: supplier.Name}
		}
		log.Printf("add supplier error: %v", err)
		return nil, errors.New("failed to add supplier")
	}
	return supplier, nil
}

func (r *supplierRepository) Update(supplier *domain.Supplier) error {
	if supplier == nil {
		return errors.New("nil supplier")
	}

	if err := r.db.Save(supplier).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return DuplicateKeyError{Entity: "supplier", Key: supplier.Name}
		}
		log.Printf("update supplier error: %v", err)
		return errors.New("failed to update supplier")
	}
	return nil
}

// Deactivate is a soft delete: existing shipments keep referring to the
// supplier by name.
func (r *supplierRepository) Deactivate(id uint) error {
	res := r.db.Model(&domain.Supplier{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		log.Printf("deactivate supplier error: %v", res.Error)
		return errors.New("failed to deactivate supplier")
	}
	if res.RowsAffected == 0 {
		return NotFoundError{Entity: "supplier", Key: shipmentKey(id)}
	}
	return nil
}
