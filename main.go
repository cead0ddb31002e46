package main

import (
	"github.com/TuanPhatt/shipment_service/config"
	"github.com/TuanPhatt/shipment_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
