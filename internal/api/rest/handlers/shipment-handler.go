package handlers

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/helper/utils"
	"github.com/TuanPhatt/shipment_service/internal/repository"
	"github.com/TuanPhatt/shipment_service/internal/services"
	pkgutils "github.com/TuanPhatt/shipment_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = 10 * 1024 * 1024 // 10MB per file

type ShipmentHandler struct {
	svc     services.ShipmentService
	uploads services.UploadService
	auth    helper.Auth
}

func NewShipmentHandler(svc services.ShipmentService, uploads services.UploadService, auth helper.Auth) *ShipmentHandler {
	return &ShipmentHandler{svc: svc, uploads: uploads, auth: auth}
}

func (h *ShipmentHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	shipments := api.Group("/shipments")

	shipments.Post("/", h.Create)
	shipments.Get("/", h.List)
	shipments.Get("/:qrCode", h.Get)
	shipments.Patch("/:qrCode", h.Update)
	shipments.Post("/:qrCode/status", h.ChangeStatus)
	shipments.Post("/:qrCode/images", h.AppendImages)
}

func (h *ShipmentHandler) Create(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	input := dto.CreateShipmentRequest{
		QRCode:      strings.TrimSpace(ctx.FormValue("qr_code")),
		IMEI:        strings.TrimSpace(ctx.FormValue("imei")),
		DeviceName:  strings.TrimSpace(ctx.FormValue("device_name")),
		Capacity:    strings.TrimSpace(ctx.FormValue("capacity")),
		Supplier:    strings.TrimSpace(ctx.FormValue("supplier")),
		RequestType: strings.TrimSpace(ctx.FormValue("request_type")),
		Status:      strings.TrimSpace(ctx.FormValue("status")),
	}
	if v := strings.TrimSpace(ctx.FormValue("store_name")); v != "" {
		input.StoreName = &v
	}
	if v := strings.TrimSpace(ctx.FormValue("notes")); v != "" {
		input.Notes = &v
	}

	if input.QRCode == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "qr_code is required")
	}

	urls, err := h.uploadFormImages(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadGateway, err.Error())
	}
	input.ImageURLs = urls

	shipment, err := h.svc.CreateShipment(input, user.Username)
	if err != nil {
		var dup repository.DuplicateKeyError
		if errors.As(err, &dup) {
			return utils.ResponseError(ctx, fiber.StatusConflict, "shipment with this qr_code already exists")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, shipment)
}

func (h *ShipmentHandler) List(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var shipments []domain.Shipment
	switch {
	case ctx.Query("active") == "true":
		shipments, err = h.svc.ListActive()
	case strings.TrimSpace(ctx.Query("status")) != "":
		shipments, err = h.svc.ListByStatus(strings.TrimSpace(ctx.Query("status")))
	default:
		shipments, err = h.svc.ListAll()
	}
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, scopeToStore(user, shipments))
}

// scopeToStore narrows a listing to the caller's own store. Admins and
// warehouse staff see everything.
func scopeToStore(user dto.AuthResponse, shipments []domain.Shipment) []domain.Shipment {
	if user.IsAdmin || !user.IsStore || user.StoreName == nil {
		return shipments
	}
	scoped := make([]domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if s.StoreName != nil && *s.StoreName == *user.StoreName {
			scoped = append(scoped, s)
		}
	}
	return scoped
}

func (h *ShipmentHandler) Get(ctx *fiber.Ctx) error {
	qrCode := ctx.Params("qrCode")

	shipment, err := h.svc.GetByQRCode(qrCode)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "shipment not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, shipment)
}

func (h *ShipmentHandler) Update(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var input dto.UpdateShipmentRequest
	if err := ctx.BodyParser(&input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	shipment, err := h.svc.UpdateShipment(ctx.Params("qrCode"), input, user.Username)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "shipment not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, shipment)
}

func (h *ShipmentHandler) ChangeStatus(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var input dto.ChangeStatusRequest
	if err := ctx.BodyParser(&input); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if strings.TrimSpace(input.Status) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "status is required")
	}

	shipment, err := h.svc.ChangeStatus(ctx.Params("qrCode"), input.Status, user.Username, input.Notes, input.ImageURLs)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "shipment not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, shipment)
}

func (h *ShipmentHandler) AppendImages(ctx *fiber.Ctx) error {
	user, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	urls, err := h.uploadFormImages(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadGateway, err.Error())
	}
	if len(urls) == 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "at least one image file is required")
	}

	shipment, err := h.svc.AppendImages(ctx.Params("qrCode"), urls, user.Username)
	if err != nil {
		var nf repository.NotFoundError
		if errors.As(err, &nf) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, "shipment not found")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, shipment)
}

// uploadFormImages pushes every "images" file in the multipart form to the
// blob store. If any files were attached, at least one upload must succeed.
func (h *ShipmentHandler) uploadFormImages(ctx *fiber.Ctx) ([]string, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		// not a multipart request; nothing to upload
		return nil, nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}

	tasks := make([]dto.UploadTask, 0, len(files))
	for i, fh := range files {
		b, err := readFormFile(fh)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, dto.UploadTask{
			Bytes:    b,
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Index:    i,
		})
	}

	results := h.uploads.UploadAll(ctx.Context(), tasks, services.DefaultMaxUploadWorkers)

	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.Success {
			urls = append(urls, r.URL)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("all image uploads failed")
	}
	return urls, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pkgutils.ReadAllLimit(f, maxUploadBytes)
}
