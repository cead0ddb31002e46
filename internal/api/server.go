package api

import (
	"log"

	"github.com/TuanPhatt/shipment_service/config"
	"github.com/TuanPhatt/shipment_service/infra/queue"
	"github.com/TuanPhatt/shipment_service/internal/api/rest/handlers"
	"github.com/TuanPhatt/shipment_service/internal/api/rest/middleware"
	"github.com/TuanPhatt/shipment_service/internal/clients/sheets"
	"github.com/TuanPhatt/shipment_service/internal/clients/telegram"
	"github.com/TuanPhatt/shipment_service/internal/domain"
	"github.com/TuanPhatt/shipment_service/internal/helper"
	"github.com/TuanPhatt/shipment_service/internal/interfaces"
	"github.com/TuanPhatt/shipment_service/internal/repository"
	"github.com/TuanPhatt/shipment_service/internal/services"
	"github.com/TuanPhatt/shipment_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024,
	})

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// ---------- DB ----------
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	if err := db.AutoMigrate(
		&domain.Shipment{},
		&domain.AuditEntry{},
		&domain.TransferSlip{},
		&domain.TransferSlipItem{},
		&domain.Supplier{},
		&domain.User{},
		&domain.Store{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	if err := seedDefaults(db, authHelper); err != nil {
		log.Fatalf("seed error: %v", err)
	}

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)

	var blobStore interfaces.BlobStore
	if cfg.CloudinaryUrl != "" {
		store, err := cloudinary.NewBlobStore(cfg.CloudinaryUrl, cfg.CloudinaryFolder)
		if err != nil {
			log.Fatalf("cloudinary init error: %v", err)
		}
		blobStore = store
	} else {
		log.Println("CLOUDINARY_URL not set - image uploads disabled")
	}

	var notifier interfaces.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		notifier = telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	} else {
		log.Println("telegram not configured - notifications disabled")
	}

	// ---------- Repositories ----------
	shipmentRepo := repository.NewShipmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	slipRepo := repository.NewTransferSlipRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	userRepo := repository.NewUserRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	var sheetSyncer interfaces.SheetSyncer
	if cfg.SheetsSpreadsheetID != "" {
		sheetSyncer = sheets.New(cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsFile, shipmentRepo)
	} else {
		log.Println("sheets not configured - spreadsheet sync disabled")
	}

	// ---------- Services ----------
	notificationSvc := services.NewNotificationService(notifier, shipmentRepo)
	shipmentSvc := services.NewShipmentService(shipmentRepo, auditRepo, notificationSvc, sheetSyncer, kafkaProducer)
	escalationSvc := services.NewEscalationService(shipmentRepo, auditRepo)
	transferSvc := services.NewTransferService(slipRepo, shipmentRepo, shipmentSvc, notificationSvc)
	uploadSvc := services.NewUploadService(blobStore)
	adminSvc := services.NewAdminService(userRepo, supplierRepo, auditRepo, maintenanceRepo, authHelper, func() error {
		return seedDefaults(db, authHelper)
	})

	// ---------- Handlers ----------
	shipmentHandler := handlers.NewShipmentHandler(shipmentSvc, uploadSvc, authHelper)
	transferHandler := handlers.NewTransferHandler(transferSvc, shipmentSvc, uploadSvc, authHelper)
	adminHandler := handlers.NewAdminHandler(adminSvc, authHelper, cfg.AuditMaxRows)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// public routes go before the auth middleware
	adminHandler.SetupPublicRoutes(app)

	app.Use(middleware.AuthMiddleware(authHelper))
	app.Use(middleware.EscalationMiddleware(escalationSvc))

	shipmentHandler.SetupRoutes(app)
	transferHandler.SetupRoutes(app)
	adminHandler.SetupRoutes(app)

	// ---------- Listen ----------
	addr := ":" + cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}

// seedDefaults creates the reference rows a fresh database needs: the
// default accounts and the carrier directory. Existing rows are left alone.
func seedDefaults(db *gorm.DB, auth helper.Auth) error {
	type seedUser struct {
		username string
		password string
		isAdmin  bool
		isStore  bool
		store    string
	}
	users := []seedUser{
		{username: "admin", password: "admin123", isAdmin: true},
		{username: "staff", password: "staff123"},
		{username: "store1", password: "store123", isStore: true, store: "Store 1"},
		{username: "store2", password: "store123", isStore: true, store: "Store 2"},
		{username: "store3", password: "store123", isStore: true, store: "Store 3"},
	}

	for _, u := range users {
		var existing domain.User
		err := db.Where("username = ?", u.username).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		row := domain.User{
			Username:     u.username,
			PasswordHash: hash,
			IsAdmin:      u.isAdmin,
			IsStore:      u.isStore,
		}
		if u.store != "" {
			store := u.store
			row.StoreName = &store
			if err := db.Where("name = ?", store).FirstOrCreate(&domain.Store{Name: store}).Error; err != nil {
				return err
			}
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	suppliers := []string{"GHN", "J&T Express", "Ahamove"}
	for _, name := range suppliers {
		var s domain.Supplier
		err := db.Where("name = ?", name).First(&s).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&domain.Supplier{Name: name, IsActive: true}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	return nil
}
