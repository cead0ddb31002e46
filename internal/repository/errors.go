package repository

import (
	"fmt"
	"strconv"
)

func shipmentKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// NotFoundError is returned when a shipment or slip lookup misses.
// Surfaced to the caller, never retried.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// DuplicateKeyError is returned when a create hits a unique constraint.
type DuplicateKeyError struct {
	Entity string
	Key    string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// AlreadyInSlipError is the idempotency guard for transfer slip items:
// re-adding the same (slip, shipment) pair is a no-op error.
type AlreadyInSlipError struct {
	SlipID     uint
	ShipmentID uint
}

func (e AlreadyInSlipError) Error() string {
	return fmt.Sprintf("shipment %d is already in transfer slip %d", e.ShipmentID, e.SlipID)
}

// SlipCompletedError is returned when mutating a slip that was already
// completed. A slip is completed exactly once.
type SlipCompletedError struct {
	SlipID uint
}

func (e SlipCompletedError) Error() string {
	return fmt.Sprintf("transfer slip %d is already completed", e.SlipID)
}
