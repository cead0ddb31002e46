package services

import (
	"errors"
	"log"
	"strings"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/repository"
)

// SeedFunc reseeds the fixed reference data (suppliers, users) after a
// full reset. Provided by the wiring in api.StartServer.
type SeedFunc func() error

type AdminService interface {
	// Auth / users
	Login(input dto.UserLogin) (*domain.User, error)
	SetUserPassword(input dto.SetPasswordRequest) error
	ListUsers() ([]domain.User, error)
	DeleteUser(username string) error

	// Suppliers
	ListSuppliers(includeInactive bool) ([]domain.Supplier, error)
	AddSupplier(name string, contact, address *string) (*domain.Supplier, error)
	UpdateSupplier(supplier *domain.Supplier) error
	DeactivateSupplier(id uint) error

	// Audit view: cleanup runs lazily whenever the log is opened
	AuditLog(limit, maxRows int) ([]domain.AuditEntry, int64, error)

	// Full reset: clears all data tables and reseeds reference data
	ResetDatabase() error
}

type adminService struct {
	userRepo     repository.UserRepository
	supplierRepo repository.SupplierRepository
	auditRepo    repository.AuditRepository
	maintenance  repository.MaintenanceRepository
	auth         helper.Auth
	seed         SeedFunc
}

func NewAdminService(
	userRepo repository.UserRepository,
	supplierRepo repository.SupplierRepository,
	auditRepo repository.AuditRepository,
	maintenance repository.MaintenanceRepository,
	auth helper.Auth,
	seed SeedFunc,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		supplierRepo: supplierRepo,
		auditRepo:    auditRepo,
		maintenance:  maintenance,
		auth:         auth,
		seed:         seed,
	}
}

func (a *adminService) Login(input dto.UserLogin) (*domain.User, error) {
	username := strings.TrimSpace(strings.ToLower(input.Username))
	password := strings.TrimSpace(input.Password)

	if username == "" || password == "" {
		return nil, errors.New("invalid username or password")
	}

	user, err := a.userRepo.FindByUsername(username)
	if err != nil || user == nil {
		return nil, errors.New("invalid username or password")
	}

	if err := a.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, errors.New("invalid username or password")
	}

	return user, nil
}

func (a *adminService) SetUserPassword(input dto.SetPasswordRequest) error {
	username := strings.TrimSpace(strings.ToLower(input.Username))
	password := strings.TrimSpace(input.Password)

	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hash, err := a.auth.HashPassword(password)
	if err != nil {
		return err
	}

	return a.userRepo.Upsert(&domain.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		IsStore:      input.IsStore,
	})
}

func (a *adminService) ListUsers() ([]domain.User, error) {
	return a.userRepo.ListAll()
}

func (a *adminService) DeleteUser(username string) error {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return errors.New("username is required")
	}
	if username == "admin" {
		return errors.New("cannot delete the admin user")
	}
	return a.userRepo.Delete(username)
}

func (a *adminService) ListSuppliers(includeInactive bool) ([]domain.Supplier, error) {
	if includeInactive {
		return a.supplierRepo.ListAll()
	}
	return a.supplierRepo.ListActive()
}

func (a *adminService) AddSupplier(name string, contact, address *string) (*domain.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("supplier name is required")
	}

	return a.supplierRepo.Add(&domain.Supplier{
		Name:     name,
		Contact:  contact,
		Address:  address,
		IsActive: true,
	})
}

func (a *adminService) UpdateSupplier(supplier *domain.Supplier) error {
	if supplier == nil || supplier.ID == 0 {
		return errors.New("invalid supplier")
	}
	if strings.TrimSpace(supplier.Name) == "" {
		return errors.New("supplier name is required")
	}
	return a.supplierRepo.Update(supplier)
}

func (a *adminService) DeactivateSupplier(id uint) error {
	if id == 0 {
		return errors.New("invalid supplier id")
	}
	return a.supplierRepo.Deactivate(id)
}

// AuditLog returns the newest entries and lazily trims retention while the
// view is open, mirroring how the log screen has always worked.
func (a *adminService) AuditLog(limit, maxRows int) ([]domain.AuditEntry, int64, error) {
	deleted, err := a.auditRepo.Cleanup(maxRows)
	if err != nil {
		log.Printf("warning: audit cleanup failed: %v", err)
		deleted = 0
	}

	entries, err := a.auditRepo.Query(limit)
	if err != nil {
		return nil, deleted, err
	}
	return entries, deleted, nil
}

func (a *adminService) ResetDatabase() error {
	if err := a.maintenance.ResetAll(); err != nil {
		return err
	}
	if a.seed != nil {
		if err := a.seed(); err != nil {
			return err
		}
	}
	return nil
}
