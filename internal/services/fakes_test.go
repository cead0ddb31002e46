package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

// fakeShipmentRepo is an in-memory ShipmentRepository keyed by id.
type fakeShipmentRepo struct {
	shipments map[uint]*domain.Shipment
	nextID    uint

	saveErr error
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{shipments: map[uint]*domain.Shipment{}, nextID: 1}
}

func (r *fakeShipmentRepo) Create(shipment *domain.Shipment) (*domain.Shipment, error) {
	for _, existing := range r.shipments {
		if existing.QRCode == shipment.QRCode {
			return nil, repository.DuplicateKeyError{Entity: "shipment", Key: shipment.QRCode}
		}
	}
	shipment.ID = r.nextID
	r.nextID++
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return shipment, nil
}

func (r *fakeShipmentRepo) FindByQRCode(qrCode string) (*domain.Shipment, error) {
	for _, s := range r.shipments {
		if s.QRCode == qrCode {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.NotFoundError{Entity: "shipment", Key: qrCode}
}

func (r *fakeShipmentRepo) FindByID(id uint) (*domain.Shipment, error) {
	s, ok := r.shipments[id]
	if !ok {
		return nil, repository.NotFoundError{Entity: "shipment", Key: "?"}
	}
	copied := *s
	return &copied, nil
}

func (r *fakeShipmentRepo) FindByIDs(ids []uint) ([]domain.Shipment, error) {
	var out []domain.Shipment
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeShipmentRepo) Save(shipment *domain.Shipment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.shipments[shipment.ID]; !ok {
		return repository.NotFoundError{Entity: "shipment", Key: shipment.QRCode}
	}
	copied := *shipment
	r.shipments[shipment.ID] = &copied
	return nil
}

func (r *fakeShipmentRepo) ListAll() ([]domain.Shipment, error) {
	var out []domain.Shipment
	for _, s := range r.shipments {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeShipmentRepo) ListByStatus(status string) ([]domain.Shipment, error) {
	all, _ := r.ListAll()
	var out []domain.Shipment
	for _, s := range all {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShipmentRepo) ListActive() ([]domain.Shipment, error) {
	active := map[string]bool{}
	for _, s := range domain.ActiveStatuses {
		active[s] = true
	}
	all, _ := r.ListAll()
	var out []domain.Shipment
	for _, s := range all {
		if active[s.Status] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShipmentRepo) ListStale(status string, before time.Time, excludeStatus string) ([]domain.Shipment, error) {
	all, _ := r.ListAll()
	var out []domain.Shipment
	for _, s := range all {
		if s.Status == status && s.Status != excludeStatus && s.LastUpdated.Before(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeShipmentRepo) UpdateStatusBatch(ids []uint, newStatus, updatedBy string, now time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		if s, ok := r.shipments[id]; ok {
			s.Status = newStatus
			s.UpdatedBy = &updatedBy
			s.LastUpdated = now
			n++
		}
	}
	return n, nil
}

// fakeAuditRepo records appended entries in order.
type fakeAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Append(shipmentID uint, action string, oldValue, newValue *string, changedBy string) error {
	r.entries = append(r.entries, domain.AuditEntry{
		ID:         uint(len(r.entries) + 1),
		ShipmentID: shipmentID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
	})
	return nil
}

func (r *fakeAuditRepo) Query(limit int) ([]domain.AuditEntry, error) {
	out := make([]domain.AuditEntry, len(r.entries))
	copy(out, r.entries)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeAuditRepo) QueryByShipment(shipmentID uint) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.ShipmentID == shipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) Cleanup(maxRows int) (int64, error) {
	if len(r.entries) <= maxRows {
		return 0, nil
	}
	deleted := int64(len(r.entries) - maxRows)
	r.entries = r.entries[len(r.entries)-maxRows:]
	return deleted, nil
}

// fakeSlipRepo is an in-memory TransferSlipRepository.
type fakeSlipRepo struct {
	slips  map[uint]*domain.TransferSlip
	items  map[uint][]domain.TransferSlipItem
	nextID uint
}

func newFakeSlipRepo() *fakeSlipRepo {
	return &fakeSlipRepo{
		slips:  map[uint]*domain.TransferSlip{},
		items:  map[uint][]domain.TransferSlipItem{},
		nextID: 1,
	}
}

func (r *fakeSlipRepo) Create(slip *domain.TransferSlip) (*domain.TransferSlip, error) {
	slip.ID = r.nextID
	r.nextID++
	if slip.CreatedAt.IsZero() {
		slip.CreatedAt = time.Now()
	}
	copied := *slip
	r.slips[slip.ID] = &copied
	return slip, nil
}

func (r *fakeSlipRepo) FindByID(id uint) (*domain.TransferSlip, error) {
	s, ok := r.slips[id]
	if !ok {
		return nil, repository.NotFoundError{Entity: "transfer slip", Key: "?"}
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSlipRepo) FindActiveByCreator(createdBy string) (*domain.TransferSlip, error) {
	for _, s := range r.slips {
		if s.CreatedBy == createdBy && s.Status == domain.SlipStatusInTransit {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSlipRepo) Save(slip *domain.TransferSlip) error {
	if _, ok := r.slips[slip.ID]; !ok {
		return repository.NotFoundError{Entity: "transfer slip", Key: slip.TransferCode}
	}
	copied := *slip
	r.slips[slip.ID] = &copied
	return nil
}

func (r *fakeSlipRepo) AddItem(slipID, shipmentID uint) error {
	for _, item := range r.items[slipID] {
		if item.ShipmentID == shipmentID {
			return repository.AlreadyInSlipError{SlipID: slipID, ShipmentID: shipmentID}
		}
	}
	r.items[slipID] = append(r.items[slipID], domain.TransferSlipItem{
		TransferSlipID: slipID,
		ShipmentID:     shipmentID,
	})
	return nil
}

func (r *fakeSlipRepo) RemoveItem(slipID, shipmentID uint) error {
	items := r.items[slipID]
	for i, item := range items {
		if item.ShipmentID == shipmentID {
			r.items[slipID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repository.NotFoundError{Entity: "transfer slip item", Key: "?"}
}

func (r *fakeSlipRepo) ListItems(slipID uint) ([]domain.TransferSlipItem, error) {
	return r.items[slipID], nil
}

func (r *fakeSlipRepo) CountItems(slipID uint) (int64, error) {
	return int64(len(r.items[slipID])), nil
}

func (r *fakeSlipRepo) ListAll() ([]domain.TransferSlip, error) {
	var out []domain.TransferSlip
	for _, s := range r.slips {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeNotifier records every outward send. Setting photoErr makes the
// photo channel fail so the text fallback kicks in.
type fakeNotifier struct {
	texts    []string
	photos   []string
	photoErr error
	textErr  error
	nextID   int64
}

func (n *fakeNotifier) SendText(_ context.Context, msg string) (int64, error) {
	if n.textErr != nil {
		return 0, n.textErr
	}
	n.texts = append(n.texts, msg)
	n.nextID++
	return n.nextID, nil
}

func (n *fakeNotifier) SendPhoto(_ context.Context, photoURL, caption string) (int64, error) {
	if n.photoErr != nil {
		return 0, n.photoErr
	}
	n.photos = append(n.photos, photoURL)
	n.nextID++
	return n.nextID, nil
}

// fakeBlobStore fails any filename listed in failOn.
type fakeBlobStore struct {
	failOn map[string]bool
}

func (s *fakeBlobStore) Put(_ context.Context, filename, _ string, _ []byte) (string, error) {
	if s.failOn[filename] {
		return "", errors.New("upload rejected")
	}
	return "https://cdn.example.com/" + filename, nil
}

// failingChanger wraps a StatusChanger and fails for the listed qr codes.
type failingChanger struct {
	inner  StatusChanger
	failOn map[string]bool
}

func (c *failingChanger) ChangeStatus(qrCode, newStatus, actor string, notes *string, newImageURLs []string) (*domain.Shipment, error) {
	if c.failOn[qrCode] {
		return nil, errors.New("induced failure")
	}
	return c.inner.ChangeStatus(qrCode, newStatus, actor, notes, newImageURLs)
}
