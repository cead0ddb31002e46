package services

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

func newTestShipmentService(repo *fakeShipmentRepo, audit *fakeAuditRepo, at time.Time) *shipmentService {
	svc := NewShipmentService(repo, audit, nil, nil, nil).(*shipmentService)
	svc.now = func() time.Time { return at }
	return svc
}

func validCreateRequest() dto.CreateShipmentRequest {
	return dto.CreateShipmentRequest{
		QRCode:     "QR-001",
		IMEI:       "356789012345678",
		DeviceName: "iPhone 13",
		Capacity:   "cracked screen",
		Supplier:   "GHN",
	}
}

func TestCreateShipment(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("defaults to received and stamps received_time", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		audit := &fakeAuditRepo{}
		svc := newTestShipmentService(repo, audit, at)

		created, err := svc.CreateShipment(validCreateRequest(), "staff")
		if err != nil {
			t.Fatalf("CreateShipment: %v", err)
		}
		if created.Status != domain.StatusReceived {
			t.Errorf("status = %q, want %q", created.Status, domain.StatusReceived)
		}
		if created.ReceivedTime == nil || !created.ReceivedTime.Equal(at) {
			t.Errorf("received_time = %v, want %v", created.ReceivedTime, at)
		}
		if created.CreatedBy != "staff" {
			t.Errorf("created_by = %q, want staff", created.CreatedBy)
		}
		if len(audit.entries) != 1 || audit.entries[0].Action != domain.AuditActionCreated {
			t.Fatalf("audit entries = %+v, want one CREATED", audit.entries)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)

		input := validCreateRequest()
		input.IMEI = "   "
		if _, err := svc.CreateShipment(input, "staff"); err == nil {
			t.Fatal("expected error for blank imei")
		}
	})

	t.Run("rejects duplicate qr code", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)

		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := svc.CreateShipment(validCreateRequest(), "staff")
		var dup repository.DuplicateKeyError
		if !errors.As(err, &dup) {
			t.Fatalf("err = %v, want DuplicateKeyError", err)
		}
	})
}

func TestChangeStatus(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*shipmentService, *fakeShipmentRepo, *fakeAuditRepo) {
		t.Helper()
		repo := newFakeShipmentRepo()
		audit := &fakeAuditRepo{}
		svc := newTestShipmentService(repo, audit, at)
		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("seed shipment: %v", err)
		}
		return svc, repo, audit
	}

	t.Run("any status may follow any other", func(t *testing.T) {
		svc, _, _ := setup(t)

		// completed straight from received, then back again
		if _, err := svc.ChangeStatus("QR-001", domain.StatusCompleted, "staff", nil, nil); err != nil {
			t.Fatalf("to completed: %v", err)
		}
		if _, err := svc.ChangeStatus("QR-001", domain.StatusReceived, "staff", nil, nil); err != nil {
			t.Fatalf("back to received: %v", err)
		}
	})

	t.Run("received_time is set once", func(t *testing.T) {
		svc, repo, _ := setup(t)

		later := at.Add(2 * time.Hour)
		svc.now = func() time.Time { return later }

		if _, err := svc.ChangeStatus("QR-001", domain.StatusInTransit, "staff", nil, nil); err != nil {
			t.Fatalf("to in-transit: %v", err)
		}
		got, err := svc.ChangeStatus("QR-001", domain.StatusReceived, "staff", nil, nil)
		if err != nil {
			t.Fatalf("back to received: %v", err)
		}
		if got.ReceivedTime == nil || !got.ReceivedTime.Equal(at) {
			t.Errorf("received_time = %v, want original %v", got.ReceivedTime, at)
		}

		stored, _ := repo.FindByQRCode("QR-001")
		if !stored.LastUpdated.Equal(later) {
			t.Errorf("last_updated = %v, want %v", stored.LastUpdated, later)
		}
	})

	t.Run("repair timestamps refresh on re-entry", func(t *testing.T) {
		svc, _, _ := setup(t)

		first := at.Add(time.Hour)
		svc.now = func() time.Time { return first }
		if _, err := svc.ChangeStatus("QR-001", domain.StatusRepairStarted, "tech", nil, nil); err != nil {
			t.Fatalf("first repair-started: %v", err)
		}

		second := at.Add(3 * time.Hour)
		svc.now = func() time.Time { return second }
		got, err := svc.ChangeStatus("QR-001", domain.StatusRepairStarted, "tech", nil, nil)
		if err != nil {
			t.Fatalf("second repair-started: %v", err)
		}
		if got.RepairStartTime == nil || !got.RepairStartTime.Equal(second) {
			t.Errorf("repair_start_time = %v, want refreshed %v", got.RepairStartTime, second)
		}
	})

	t.Run("writes a status change audit entry", func(t *testing.T) {
		svc, _, audit := setup(t)

		if _, err := svc.ChangeStatus("QR-001", domain.StatusInWarehouse, "staff", nil, nil); err != nil {
			t.Fatalf("ChangeStatus: %v", err)
		}

		last := audit.entries[len(audit.entries)-1]
		if last.Action != domain.AuditActionStatusChanged {
			t.Errorf("action = %q, want %q", last.Action, domain.AuditActionStatusChanged)
		}
		if last.OldValue == nil || *last.OldValue != domain.StatusReceived {
			t.Errorf("old_value = %v, want received", last.OldValue)
		}
		if last.NewValue == nil || *last.NewValue != domain.StatusInWarehouse {
			t.Errorf("new_value = %v, want in-warehouse", last.NewValue)
		}
	})

	t.Run("unknown shipment", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.ChangeStatus("QR-missing", domain.StatusCompleted, "staff", nil, nil)
		var nf repository.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("err = %v, want NotFoundError", err)
		}
	})
}

func TestUpdateShipment(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("applies only non-nil fields and summarizes them", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		audit := &fakeAuditRepo{}
		svc := newTestShipmentService(repo, audit, at)
		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("seed: %v", err)
		}

		device := "iPhone 14"
		notes := "returned by customer"
		got, err := svc.UpdateShipment("QR-001", dto.UpdateShipmentRequest{
			DeviceName: &device,
			Notes:      &notes,
		}, "staff")
		if err != nil {
			t.Fatalf("UpdateShipment: %v", err)
		}
		if got.DeviceName != device {
			t.Errorf("device = %q, want %q", got.DeviceName, device)
		}
		if got.IMEI != "356789012345678" {
			t.Errorf("imei changed unexpectedly: %q", got.IMEI)
		}

		last := audit.entries[len(audit.entries)-1]
		if last.Action != domain.AuditActionUpdated {
			t.Errorf("action = %q, want UPDATED", last.Action)
		}
		if last.NewValue == nil || !strings.Contains(*last.NewValue, "Device: iPhone 14") {
			t.Errorf("summary = %v, want to mention device change", last.NewValue)
		}
	})

	t.Run("empty patch is an error", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)
		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("seed: %v", err)
		}

		if _, err := svc.UpdateShipment("QR-001", dto.UpdateShipmentRequest{}, "staff"); err == nil {
			t.Fatal("expected error for empty patch")
		}
	})

	t.Run("qr_code cannot be rewritten", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)
		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("seed: %v", err)
		}

		rewritten := "QR-REWRITTEN"
		if _, err := svc.UpdateShipment("QR-001", dto.UpdateShipmentRequest{QRCode: &rewritten}, "staff"); err == nil {
			t.Fatal("expected error for qr_code rewrite")
		}
		stored, err := repo.FindByQRCode("QR-001")
		if err != nil || stored.QRCode != "QR-001" {
			t.Errorf("stored qr_code = %v (err %v), want QR-001 untouched", stored, err)
		}
	})

	t.Run("resending the current qr_code is a no-op field", func(t *testing.T) {
		repo := newFakeShipmentRepo()
		svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)
		if _, err := svc.CreateShipment(validCreateRequest(), "staff"); err != nil {
			t.Fatalf("seed: %v", err)
		}

		same := "QR-001"
		notes := "still the same device"
		got, err := svc.UpdateShipment("QR-001", dto.UpdateShipmentRequest{QRCode: &same, Notes: &notes}, "staff")
		if err != nil {
			t.Fatalf("UpdateShipment: %v", err)
		}
		if got.QRCode != "QR-001" {
			t.Errorf("qr_code = %q, want QR-001", got.QRCode)
		}
	})
}

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		var km keyedMutex
		var inside int32

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("QR-001")
				defer unlock()
				if n := atomic.AddInt32(&inside, 1); n != 1 {
					t.Errorf("%d goroutines inside the critical section", n)
				}
				atomic.AddInt32(&inside, -1)
			}()
		}
		wg.Wait()
	})

	t.Run("drops the entry once the last holder releases", func(t *testing.T) {
		var km keyedMutex

		unlockA := km.Lock("QR-001")
		unlockB := km.Lock("QR-002")
		unlockA()
		unlockB()

		km.mu.Lock()
		defer km.mu.Unlock()
		if len(km.locks) != 0 {
			t.Errorf("lock map holds %d entries after release, want 0", len(km.locks))
		}
	})
}

func TestAppendImages(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeShipmentRepo()
	svc := newTestShipmentService(repo, &fakeAuditRepo{}, at)

	input := validCreateRequest()
	input.ImageURLs = []string{"https://cdn.example.com/a.jpg"}
	if _, err := svc.CreateShipment(input, "staff"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.AppendImages("QR-001", []string{"https://cdn.example.com/b.jpg"}, "staff")
	if err != nil {
		t.Fatalf("AppendImages: %v", err)
	}

	urls := got.ImageURLs()
	want := []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}

	if _, err := svc.AppendImages("QR-001", nil, "staff"); err == nil {
		t.Error("expected error for empty url list")
	}
}
