package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyStatus(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    string
		field     func(s *Shipment) *time.Time
		overwrite bool
	}{
		{
			name:   "received sets received_time once",
			status: StatusReceived,
			field:  func(s *Shipment) *time.Time { return s.ReceivedTime },
		},
		{
			name:      "repair-started refreshes on re-entry",
			status:    StatusRepairStarted,
			field:     func(s *Shipment) *time.Time { return s.RepairStartTime },
			overwrite: true,
		},
		{
			name:      "repair-completed refreshes on re-entry",
			status:    StatusRepairCompleted,
			field:     func(s *Shipment) *time.Time { return s.RepairCompletionTime },
			overwrite: true,
		},
		{
			name:      "completed refreshes on re-entry",
			status:    StatusCompleted,
			field:     func(s *Shipment) *time.Time { return s.CompletedTime },
			overwrite: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shipment{}

			s.ApplyStatus(tt.status, first)
			got := tt.field(s)
			if got == nil || !got.Equal(first) {
				t.Fatalf("after first entry: field = %v, want %v", got, first)
			}

			s.ApplyStatus(tt.status, second)
			got = tt.field(s)
			want := first
			if tt.overwrite {
				want = second
			}
			if got == nil || !got.Equal(want) {
				t.Errorf("after re-entry: field = %v, want %v", got, want)
			}
			if !s.LastUpdated.Equal(second) {
				t.Errorf("last_updated = %v, want always refreshed to %v", s.LastUpdated, second)
			}
		})
	}

	t.Run("unknown status only moves last_updated", func(t *testing.T) {
		s := &Shipment{}
		s.ApplyStatus("quarantined", first)

		if s.Status != "quarantined" {
			t.Errorf("status = %q, want the raw value kept", s.Status)
		}
		if s.ReceivedTime != nil || s.RepairStartTime != nil || s.CompletedTime != nil {
			t.Error("unknown status stamped a derived timestamp")
		}
		if !s.LastUpdated.Equal(first) {
			t.Errorf("last_updated = %v, want %v", s.LastUpdated, first)
		}
	})
}

func TestImageURLs(t *testing.T) {
	tests := []struct {
		name   string
		stored *string
		append []string
		want   []string
	}{
		{
			name: "nil column",
			want: nil,
		},
		{
			name:   "appending to empty",
			append: []string{"https://a", "https://b"},
			want:   []string{"https://a", "https://b"},
		},
		{
			name:   "appending keeps existing",
			stored: strptr("https://a;https://b"),
			append: []string{"https://c"},
			want:   []string{"https://a", "https://b", "https://c"},
		},
		{
			name:   "blank segments are dropped",
			stored: strptr("https://a;;  ;https://b"),
			want:   []string{"https://a", "https://b"},
		},
		{
			name:   "blank additions are ignored",
			stored: strptr("https://a"),
			append: []string{"", "   "},
			want:   []string{"https://a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shipment{ImageURL: tt.stored}
			s.AppendImageURLs(tt.append)

			if got := s.ImageURLs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ImageURLs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func strptr(s string) *string { return &s }
