package repository

import (
	"errors"
	"log"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"gorm.io/gorm"
)

// DefaultAuditRetention is how many audit rows Cleanup keeps when the
// caller does not override it.
const DefaultAuditRetention = 100

type AuditRepository interface {
	Append(shipmentID uint, action string, oldValue, newValue *string, changedBy string) error
	Query(limit int) ([]domain.AuditEntry, error)
	QueryByShipment(shipmentID uint) ([]domain.AuditEntry, error)
	Cleanup(maxRows int) (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(shipmentID uint, action string, oldValue, newValue *string, changedBy string) error {
	entry := &domain.AuditEntry{
		ShipmentID: shipmentID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
	}

	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("append audit entry error: %v", err)
		return errors.New("failed to append audit entry")
	}
	return nil
}

func (r *auditRepository) Query(limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditRetention
	}

	var entries []domain.AuditEntry
	if err := r.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		log.Printf("query audit log error: %v", err)
		return nil, errors.New("failed to query audit log")
	}
	return entries, nil
}

func (r *auditRepository) QueryByShipment(shipmentID uint) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	if err := r.db.Where("shipment_id = ?", shipmentID).
		Order("timestamp DESC, id DESC").Find(&entries).Error; err != nil {
		log.Printf("query audit log by shipment error: %v", err)
		return nil, errors.New("failed to query audit log")
	}
	return entries, nil
}

// Cleanup keeps the maxRows most recent entries (by timestamp, ties broken
// by id) and deletes everything older. Returns how many rows went away.
func (r *auditRepository) Cleanup(maxRows int) (int64, error) {
	if maxRows <= 0 {
		maxRows = DefaultAuditRetention
	}

	res := r.db.Exec(`
		DELETE FROM audit_entries
		WHERE id NOT IN (
			SELECT id FROM audit_entries
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)`, maxRows)
	if res.Error != nil {
		log.Printf("audit cleanup error: %v", res.Error)
		return 0, errors.New("failed to clean up audit log")
	}
	return res.RowsAffected, nil
}
