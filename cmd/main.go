package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/poofware/housing-service/internal/app"
	"github.com/poofware/housing-service/internal/config"
	"github.com/poofware/housing-service/internal/constants"
	"github.com/poofware/housing-service/internal/controllers"
	"github.com/poofware/housing-service/internal/middleware"
	"github.com/poofware/housing-service/internal/routes"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize housing-service:", err)
	}
	defer application.Close()

	repos := application.Repos
	clock := services.NewClock(cfg.BillingLocation)

	notifier := services.NewNotificationService(cfg.NotificationQueueSize, services.ReceiptSendersFromConfig(cfg)...)
	communityService := services.NewCommunityService(repos.Communities, clock)
	billingService := services.NewBillingService(repos.Occupants, clock, cfg.BillingGraceWorkdays)
	occupantService := services.NewOccupantService(communityService, repos.Occupants, repos.Payments, billingService, notifier, clock)
	clientService := services.NewClientService(repos.Clients, clock)
	authService := services.NewAuthService(cfg, repos.Occupants, repos.Clients)

	if _, err := communityService.EnsureEstablished(context.Background()); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to establish housing community")
	}

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedDemoCommunity(context.Background(), communityService); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	healthController := controllers.NewHealthController(application)
	adminController := controllers.NewAdminController(authService, communityService, occupantService, billingService)
	occupantController := controllers.NewOccupantController(authService, communityService, occupantService)
	clientController := controllers.NewClientController(authService, clientService, communityService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AdminLogin, adminController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.FlatsAvailable, occupantController.AvailableFlatsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.OccupantRegister, occupantController.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.OccupantLogin, occupantController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.ClientRegister, clientController.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.ClientLogin, clientController.LoginHandler).Methods(http.MethodPost)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret, constants.RoleAdmin))
	admin.HandleFunc(routes.AdminBlocks, adminController.AddBlockHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminBlocks, adminController.ListBlocksHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminFlats, adminController.AddFlatHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminUnoccupiedFlats, adminController.ListUnoccupiedFlatsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminOccupiedFlats, adminController.ListOccupiedFlatsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminPayments, adminController.ListPaymentsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminOccupantsListing, adminController.ListOccupantsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminBillingPeriodRun, adminController.RunBillingPeriodHandler).Methods(http.MethodPost)

	occupant := router.NewRoute().Subrouter()
	occupant.Use(middleware.AuthMiddleware(cfg.JWTSecret, constants.RoleOccupant))
	occupant.HandleFunc(routes.OccupantAmount, occupantController.AmountHandler).Methods(http.MethodGet)
	occupant.HandleFunc(routes.OccupantPay, occupantController.PayHandler).Methods(http.MethodPost)
	occupant.HandleFunc(routes.OccupantPayments, occupantController.PaymentsHandler).Methods(http.MethodGet)
	occupant.HandleFunc(routes.OccupantVacate, occupantController.VacateHandler).Methods(http.MethodPost)

	client := router.NewRoute().Subrouter()
	client.Use(middleware.AuthMiddleware(cfg.JWTSecret, constants.RoleClient))
	client.HandleFunc(routes.ClientFlats, clientController.FlatsHandler).Methods(http.MethodGet)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier.Start(context.Background())
	defer notifier.Stop()

	c := cron.New(cron.WithLocation(cfg.BillingLocation))
	_, billingErr := c.AddFunc(cfg.BillingCronSpec, func() {
		ctx, cancel := context.WithTimeout(rootCtx, constants.BillingBoundaryTimeout)
		defer cancel()
		if _, e := billingService.RunPeriodBoundary(ctx); e != nil {
			utils.Logger.WithError(e).Error("Scheduled billing period start failed")
		}
	})
	if billingErr != nil {
		utils.Logger.WithError(billingErr).Fatal("Failed to schedule billing period cron")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, constants.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: co.Handler(router),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		utils.Logger.Fatal("housing-service failed to listen:", err)
	}

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	// returns after in-flight requests drain; the deferred cleanup runs after that
	if err := app.Serve(rootCtx, srv, ln, constants.ShutdownTimeout); err != nil {
		utils.Logger.WithError(err).Error("housing-service stopped with error")
	}
}
