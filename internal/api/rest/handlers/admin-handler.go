package handlers

import (
	"errors"
	"strings"

	"github.com/TuanPhatt/shipment_service/internal/api/rest/middleware"
	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/helper/utils"
	"github.com/TuanPhatt/shipment_service/internal/repository"
	"github.com/TuanPhatt/shipment_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	svc          services.AdminService
	auth         helper.Auth
	auditMaxRows int
}

func NewAdminHandler(svc services.AdminService, auth helper.Auth, auditMaxRows int) *AdminHandler {
	return &AdminHandler{svc: svc, auth: auth, auditMaxRows: auditMaxRows}
}

// SetupPublicRoutes registers the routes that must stay reachable without a
// token. Call before the auth middleware is installed.
func (h *AdminHandler) SetupPublicRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/login", h.Login)
}

func (h *AdminHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	admin := api.Group("/admin", middleware.AdminOnly())

	admin.Get("/audit", h.AuditLog)

	admin.Get("/suppliers", h.ListSuppliers)
	admin.Post("/suppliers", h.AddSupplier)
	admin.Put("/suppliers/:id", h.UpdateSupplier)
	admin.Delete("/suppliers/:id", h.DeactivateSupplier)

	admin.Get("/users", h.ListUsers)
	admin.Post("/users", h.SetUserPassword)
	admin.Delete("/users/:username", h.DeleteUser)

	admin.Post("/reset", h.ResetDatabase)
}

func (h *AdminHandler) Login(ctx *fiber.Ctx) error {
	var input dto.UserLogin
	if err := ctx.BodyParser(&input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := h.svc.Login(input)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "invalid username or password")
	}

	token, err := h.auth.GenerateToken(user.Username, user.IsAdmin, user.IsStore, user.StoreName)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not generate token")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"token":      token,
		"username":   user.Username,
		"is_admin":   user.IsAdmin,
		"is_store":   user.IsStore,
		"store_name": user.StoreName,
	})
}

func (h *AdminHandler) AuditLog(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 100)

	entries, deleted, err := h.svc.AuditLog(limit, h.auditMaxRows)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"entries":      entries,
		"trimmed_rows": deleted,
	})
}

func (h *AdminHandler) ListSuppliers(ctx *fiber.Ctx) error {
	includeInactive := ctx.Query("include_inactive") == "true"

	suppliers, err := h.svc.ListSuppliers(includeInactive)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, suppliers)
}

func (h *AdminHandler) AddSupplier(ctx *fiber.Ctx) error {
	var input struct {
		Name    string  `json:"name"`
		Contact *string `json:"contact,omitempty"`
		Address *string `json:"address,omitempty"`
	}
	if err := ctx.BodyParser(&input); err != nil || strings.TrimSpace(input.Name) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "supplier name is required")
	}

	supplier, err := h.svc.AddSupplier(input.Name, input.Contact, input.Address)
	if err != nil {
		var dup repository.DuplicateKeyError
		if errors.As(err, &dup) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "supplier already exists")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, supplier)
}

func (h *AdminHandler) UpdateSupplier(ctx *fiber.Ctx) error {
	id, err := parseID(ctx.Params("id"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid supplier id")
	}

	var input domain.Supplier
	if err := ctx.BodyParser(&input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	input.ID = id

	if err := h.svc.UpdateSupplier(&input); err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "supplier not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, input)
}

func (h *AdminHandler) DeactivateSupplier(ctx *fiber.Ctx) error {
	id, err := parseID(ctx.Params("id"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid supplier id")
	}

	if err := h.svc.DeactivateSupplier(id); err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "supplier not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "supplier deactivated")
}

func (h *AdminHandler) ListUsers(ctx *fiber.Ctx) error {
	users, err := h.svc.ListUsers()
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	// never ship hashes to the client
	type userView struct {
		Username string  `json:"username"`
		IsAdmin  bool    `json:"is_admin"`
		IsStore  bool    `json:"is_store"`
		Store    *string `json:"store_name,omitempty"`
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			Username: u.Username,
			IsAdmin:  u.IsAdmin,
			IsStore:  u.IsStore,
			Store:    u.StoreName,
		})
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, views)
}

func (h *AdminHandler) SetUserPassword(ctx *fiber.Ctx) error {
	var input dto.SetPasswordRequest
	if err := ctx.BodyParser(&input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.SetUserPassword(input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "user saved")
}

func (h *AdminHandler) DeleteUser(ctx *fiber.Ctx) error {
	if err := h.svc.DeleteUser(ctx.Params("username")); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "user deleted")
}

func (h *AdminHandler) ResetDatabase(ctx *fiber.Ctx) error {
	if err := h.svc.ResetDatabase(); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "database reset")
}
