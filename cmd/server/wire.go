package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"healthease/internal/api"
	"healthease/internal/api/handlers"
	"healthease/internal/api/middleware"
	"healthease/internal/client"
	"healthease/internal/config"
	"healthease/internal/geo"
	"healthease/internal/render"
	"healthease/internal/repository"
	"healthease/internal/repository/memory"
	"healthease/internal/repository/sqlite"
	"healthease/internal/seed"
	"healthease/internal/services"
	"healthease/internal/sim"
	"healthease/internal/stream"
)

// app holds what runServer needs to run and tear down.
type app struct {
	engine   *gin.Engine
	tracking *services.TrackingService
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openStore opens the configured repository implementation.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return db.Store(), func() { db.Close() }, nil
	default:
		return memory.NewStore(), func() {}, nil
	}
}

func mapCenter(cfg *config.Config) geo.Point {
	return geo.Point{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng}
}

// buildApp wires repositories, services, handlers and the router.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	if cfg.Storage.Seed {
		res, err := seed.Run(ctx, store, time.Now(), nil)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		if res != (seed.Result{}) {
			logger.Info().Int("ambulances", res.Ambulances).Int("doctors", res.Doctors).Msg("seeded demo data")
		}
	}

	locks := memory.NewLockManager()
	a.closers = append(a.closers, locks.Stop)

	// Initialize services
	index := geo.NewSpatialIndex(cfg.Geo.GeohashPrecision)
	ambulanceService := services.NewAmbulanceService(store.Ambulances, index, logger)
	if err := ambulanceService.RebuildIndex(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("build ambulance index: %w", err)
	}
	doctorService := services.NewDoctorService(store.Doctors, logger)
	appointmentService := services.NewAppointmentService(store.Appointments, store.Doctors, time.Now, logger)
	medicineService := services.NewMedicineService(store.Medicines, locks, logger)
	telecallService := services.NewTelecallService(store.Telecalls, nil, logger)

	// The map follows the local fleet unless sync.api_url points elsewhere.
	var source sim.AmbulanceSource = ambulanceService
	if cfg.Sync.APIURL != "" {
		source = client.New(cfg.Sync.APIURL, "", &http.Client{Timeout: 10 * time.Second})
	}

	hub := stream.NewHub(logger)
	a.closers = append(a.closers, hub.Close)
	notices := services.NewNotificationService(cfg.Map.NoticeLimit, hub, logger)
	icons := render.NewIconCache(
		render.HTTPLoader(&http.Client{Timeout: cfg.Map.IconTimeout}, cfg.Map.Icons),
		cfg.Map.IconTimeout,
		logger,
	)
	tracking := services.NewTrackingService(services.TrackingConfig{
		FrameInterval: cfg.Map.FrameInterval,
		FrameWidth:    cfg.Map.FrameWidth,
		FrameHeight:   cfg.Map.FrameHeight,
		Sync: sim.SyncConfig{
			Interval:   cfg.Sync.Interval,
			MinVisible: cfg.Sync.MinVisible,
			Center:     mapCenter(cfg),
		},
	}, source, icons, notices, hub, logger)
	a.tracking = tracking
	a.closers = append(a.closers, tracking.Close)

	matchingService := services.NewMatchingService(ambulanceService, tracking, locks, cfg.Geo.SearchRadiusKm, logger)
	orderService := services.NewOrderService(store.Orders, medicineService, tracking, mapCenter(cfg), nil, logger)

	// Initialize handlers
	router := api.NewRouter(
		handlers.NewAmbulanceHandler(ambulanceService, cfg.Geo.SearchRadiusKm),
		handlers.NewClinicHandler(doctorService, appointmentService, medicineService, telecallService),
		handlers.NewOrderHandler(orderService),
		handlers.NewMapHandler(tracking, matchingService, hub, logger),
		middleware.NewAuthenticator(cfg.Auth),
	)
	a.engine = api.NewEngine(logger, cfg.Server.CORSOrigins)
	router.Setup(a.engine)

	return a, nil
}
