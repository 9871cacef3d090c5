package main

import (
	"log"

	"github.com/aa-ray-man/safehaven/internal/api"
	"github.com/aa-ray-man/safehaven/internal/config"
	"github.com/aa-ray-man/safehaven/internal/database"
	"github.com/aa-ray-man/safehaven/internal/handler"
	"github.com/aa-ray-man/safehaven/internal/ml"
	"github.com/aa-ray-man/safehaven/internal/repository"
	"github.com/aa-ray-man/safehaven/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	reportRepo := repository.NewReportRepository(db)
	sosRepo := repository.NewSOSRepository(db)

	engine := ml.NewEngine(reportRepo, ml.NewFileModelStore(cfg.ModelDir), ml.Config{
		PredictionRadiusKm: cfg.PredictionRadiusKm,
		CacheTTL:           cfg.CacheTTL,
	})

	routeService := service.NewRouteService(engine, reportRepo,
		cfg.RouteCount, cfg.RouteDistanceKm, cfg.MidpointCount, cfg.IncidentRadiusKm)
	reportService := service.NewReportService(reportRepo, engine, cfg.ReportsRadiusKm)
	sosService := service.NewSOSService(sosRepo, service.LogSMSSender{})

	router := api.SetupRouter(cfg,
		handler.NewSafetyHandler(routeService, reportService, engine),
		handler.NewSOSHandler(sosService),
	)

	log.Printf("Server starting on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
