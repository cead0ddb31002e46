package services

import (
	"log"
	"sync"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

// staleAfter is how long a shipment may sit in a swept status before the
// next sweep advances it.
const staleAfter = time.Hour

type escalationRule struct {
	From string
	To   string
}

// escalationRules maps a stale source status to its target. Kept as data:
// the sweep is driven by this table, not by per-status code.
var escalationRules = []escalationRule{
	{From: domain.StatusReceived, To: domain.StatusWarehouseProcessing},
	{From: domain.StatusInWarehouse, To: domain.StatusWarehouseProcessing},
	{From: domain.StatusInTransit, To: domain.StatusProcessing},
}

type EscalationService interface {
	// Sweep advances every shipment that has been sitting untouched in a
	// swept status for over an hour and reports how many moved. Running it
	// again immediately is a no-op.
	Sweep(now time.Time) (int, error)
}

type escalationService struct {
	repo      repository.ShipmentRepository
	auditRepo repository.AuditRepository

	// mu serializes overlapping sweeps so two simultaneous sessions cannot
	// double-apply a rule.
	mu sync.Mutex
}

func NewEscalationService(repo repository.ShipmentRepository, auditRepo repository.AuditRepository) EscalationService {
	return &escalationService{
		repo:      repo,
		auditRepo: auditRepo,
	}
}

func (s *escalationService) Sweep(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-staleAfter)
	total := 0

	for _, rule := range escalationRules {
		stale, err := s.repo.ListStale(rule.From, cutoff, rule.To)
		if err != nil {
			return total, err
		}
		if len(stale) == 0 {
			continue
		}

		ids := make([]uint, 0, len(stale))
		for _, shipment := range stale {
			ids = append(ids, shipment.ID)
		}

		updated, err := s.repo.UpdateStatusBatch(ids, rule.To, "system", now)
		if err != nil {
			return total, err
		}
		total += int(updated)

		// one audit entry per escalated row, actor "system"
		oldStatus, newStatus := rule.From, rule.To
		for _, shipment := range stale {
			if err := s.auditRepo.Append(shipment.ID, domain.AuditActionStatusChanged, &oldStatus, &newStatus, "system"); err != nil {
				log.Printf("warning: audit append failed for escalated shipment %s: %v", shipment.QRCode, err)
			}
		}
	}

	return total, nil
}
