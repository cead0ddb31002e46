package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/helper/utils"
	"github.com/TuanPhatt/shipment_service/internal/repository"
	"github.com/TuanPhatt/shipment_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TransferHandler struct {
	svc     services.TransferService
	shipSvc services.ShipmentService
	uploads services.UploadService
	auth    helper.Auth
}

func NewTransferHandler(svc services.TransferService, shipSvc services.ShipmentService, uploads services.UploadService, auth helper.Auth) *TransferHandler {
	return &TransferHandler{svc: svc, shipSvc: shipSvc, uploads: uploads, auth: auth}
}

func (h *TransferHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	transfers := api.Group("/transfers")

	transfers.Get("/", h.List)
	transfers.Get("/active", h.Active)
	transfers.Get("/:slipID", h.Get)
	transfers.Post("/:slipID/items", h.AddItem)
	transfers.Delete("/:slipID/items/:shipmentID", h.RemoveItem)
	transfers.Post("/:slipID/complete", h.Complete)
}

func (h *TransferHandler) Active(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	slip, err := h.svc.ActiveSlip(user.Username)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, slip)
}

func (h *TransferHandler) List(ctx *fiber.Ctx) error {
	slips, err := h.svc.ListAll()
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, slips)
}

func (h *TransferHandler) Get(ctx *fiber.Ctx) error {
	slipID, err := parseID(ctx.Params("slipID"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid slip id")
	}

	slip, shipments, err := h.svc.Get(slipID)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "transfer slip not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"slip":      slip,
		"shipments": shipments,
	})
}

// AddItem scans a shipment into a slip by qr_code.
func (h *TransferHandler) AddItem(ctx *fiber.Ctx) error {
	slipID, err := parseID(ctx.Params("slipID"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid slip id")
	}

	var input struct {
		QRCode string `json:"qr_code"`
	}
	if err := ctx.BodyParser(&input); err != nil || strings.TrimSpace(input.QRCode) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "qr_code is required")
	}

	shipment, err := h.shipSvc.GetByQRCode(input.QRCode)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "shipment not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.svc.AddItem(slipID, shipment.ID); err != nil {
		var dup repository.AlreadyInSlipError
		if errors.As(err, &dup) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "shipment is already on this slip")
		}
		var done repository.SlipCompletedError
		if errors.As(err, &done) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "transfer slip is already completed")
		}
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "transfer slip not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "shipment added to slip")
}

func (h *TransferHandler) RemoveItem(ctx *fiber.Ctx) error {
	slipID, err := parseID(ctx.Params("slipID"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid slip id")
	}
	shipmentID, err := parseID(ctx.Params("shipmentID"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid shipment id")
	}

	if err := h.svc.RemoveItem(slipID, shipmentID); err != nil {
		var done repository.SlipCompletedError
		if errors.As(err, &done) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "transfer slip is already completed")
		}
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "transfer slip not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "shipment removed from slip")
}

// Complete marks the slip done and cascades the target status to every
// member. Accepts multipart so the transporter can attach a proof photo.
func (h *TransferHandler) Complete(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	slipID, err := parseID(ctx.Params("slipID"))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid slip id")
	}

	targetStatus := strings.TrimSpace(ctx.FormValue("target_status"))
	if targetStatus == "" {
		targetStatus = domain.StatusInWarehouse
	}
	var notes *string
	if v := strings.TrimSpace(ctx.FormValue("notes")); v != "" {
		notes = &v
	}

	var imageURL *string
	if form, err := ctx.MultipartForm(); err == nil {
		if files := form.File["image"]; len(files) > 0 {
			b, err := readFormFile(files[0])
			if err != nil {
				return utils.ResponseError(ctx, fiber.StatusBadRequest, "cannot read proof image")
			}
			tasks := []dto.UploadTask{{
				Bytes:    b,
				Filename: files[0].Filename,
				MimeType: files[0].Header.Get("Content-Type"),
				Index:    0,
			}}
			results := h.uploads.UploadAll(ctx.Context(), tasks, 1)
			if len(results) > 0 && results[0].Success {
				imageURL = &results[0].URL
			}
		}
	}

	result, err := h.svc.Complete(slipID, user.Username, imageURL, targetStatus, notes)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "transfer slip not found")
		}
		var done repository.SlipCompletedError
		if errors.As(err, &done) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "transfer slip is already completed")
		}
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, result)
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
