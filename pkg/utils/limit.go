package utils

import (
	"errors"
	"io"
)

// ErrFileTooLarge is returned when an uploaded file exceeds the handler's
// size cap.
var ErrFileTooLarge = errors.New("file too large")

// ReadAllLimit reads at most max bytes from r. One extra byte is requested
// so an exactly-at-limit file can be told apart from an oversized one.
func ReadAllLimit(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, ErrFileTooLarge
	}
	return b, nil
}
