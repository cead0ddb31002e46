package repository

import (
	"errors"
	"log"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"gorm.io/gorm"
)

// MaintenanceRepository backs the administrative full reset: every data
// table is cleared in one transaction, after which the caller reseeds the
// fixed reference data (suppliers, users).
type MaintenanceRepository interface {
	ResetAll() error
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) ResetAll() error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&domain.TransferSlipItem{},
			&domain.TransferSlip{},
			&domain.AuditEntry{},
			&domain.Shipment{},
			&domain.Supplier{},
			&domain.User{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("database reset error: %v", err)
		return errors.New("failed to reset database")
	}
	return nil
}
