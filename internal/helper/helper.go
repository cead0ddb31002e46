package helper

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// previewLen caps how much of a long text field ends up in an audit
// summary line.
const previewLen = 50

func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite driver without error translation
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// TruncatePreview shortens long free-text values for audit display. The
// limit counts runes, not bytes: notes are routinely multi-byte text and a
// byte cut could split a rune mid-sequence.
func TruncatePreview(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= previewLen {
		return s
	}
	return string(runes[:previewLen]) + "..."
}

// FieldChange is one field-level diff going into an audit summary.
type FieldChange struct {
	Label string
	Value string
}

// SummarizeChanges composes a single human-readable line out of the fields
// touched by one mutation, e.g. "Status: received | Notes: customer ca...".
func SummarizeChanges(changes []FieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Label, TruncatePreview(c.Value)))
	}
	return strings.Join(parts, " | ")
}

// MaskIdentifier hides the middle of a device identifier for outward
// notifications, keeping the first and last two characters.
func MaskIdentifier(id string) string {
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return id[:2] + strings.Repeat("*", len(id)-4) + id[len(id)-2:]
}
