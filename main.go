package main

import (
	"log"
	"os"

	"dmc-inventory/config"
	"dmc-inventory/controllers"
	"dmc-inventory/routes"
	"dmc-inventory/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	logger := log.New(os.Stdout, "[dmc] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer st.Close()

	// quantities go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if !cfg.Auth.Enabled() {
		logger.Println("AUTH_SECRET not set, API is open")
	}

	h := controllers.NewHandler(st, cfg.Auth, cfg.CacheTTL, logger)
	r := gin.Default()
	routes.SetupRoutes(r, h)

	logger.Printf("listening on :%s (%s store)", cfg.Port, st.Driver())
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
