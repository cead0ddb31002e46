package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DatabaseDSN string

	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	CloudinaryUrl    string
	CloudinaryFolder string

	TelegramToken  string
	TelegramChatID string

	SheetsSpreadsheetID   string
	SheetsCredentialsFile string

	AccessSecret string

	AuditMaxRows int
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		err := godotenv.Overload()
		if err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:            envOr("SERVER_PORT", "8080"),
		DatabaseDSN:           envOr("DATABASE_DSN", "shipments.db"),
		KafkaBroker:           os.Getenv("KAFKA_BROKER"),
		KafkaTopic:            os.Getenv("KAFKA_TOPIC"),
		KafkaUsername:         os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:         os.Getenv("KAFKA_PASSWORD"),
		CloudinaryUrl:         os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder:      envOr("CLOUDINARY_FOLDER", "shipments"),
		TelegramToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsCredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
		AccessSecret:          envOr("ACCESS_SECRET", "dev-secret"),
		AuditMaxRows:          envOrInt("AUDIT_MAX_ROWS", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}
