package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	availabilityOverridesHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/availability_overrides"
	availabilityRulesHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/availability_rules"
	cancelAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_appointment"
	getAppointmentHistoryHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_appointment_history"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_available_slots"
	getBookingPolicyHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/get_booking_policy"
	listAppointmentsHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/list_appointments"
	timeBlocksHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/time_blocks"
	updateAppointmentHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/update_appointment"
	updateBookingPolicyHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/update_booking_policy"
	workingHoursHandler "github.com/m04kA/SMC-SalonBookingService/internal/api/handlers/working_hours"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/config"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/catalogcache"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/slotcache"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/availability"
	outboxRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/outbox"
	policyRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/policy"
	timeBlockRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/timeblock"
	clientServiceClient "github.com/m04kA/SMC-SalonBookingService/internal/integrations/clientservice"
	salonServiceClient "github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	appointmentsService "github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/events"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
	policyService "github.com/m04kA/SMC-SalonBookingService/internal/service/policy"
	timeBlocksService "github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/validator"
	cancelAppointmentUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment"
	createAppointmentUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
	updateAppointmentUC "github.com/m04kA/SMC-SalonBookingService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/workers/outbox"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/tracing"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// domainMetrics доменные счётчики, которые пишут use cases и воркер outbox
type domainMetrics interface {
	IncAppointmentCreated(source string)
	IncBookingConflict(operation string)
	IncTransition(status string)
	ObserveSlotGeneration(d time.Duration)
	IncSlotCache(result string)
	IncOutboxPublished(eventType string)
}

const rateLimiterIdle = 10 * time.Minute

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SalonBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		domainStats      domainMetrics = metrics.Nop{}
	)
	stopCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		domainStats = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Трейсинг
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled (endpoint=%s, ratio=%.2f)", cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка БД: с метриками или без
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Plain(db)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB, time.Duration(cfg.Database.TxTimeout)*time.Second)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)
	timeBlockRepository := timeBlockRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)

	// Интеграционные клиенты
	salonHTTPClient := salonServiceClient.NewClient(
		cfg.SalonService.URL,
		time.Duration(cfg.SalonService.Timeout)*time.Second,
		log,
	)
	clientClient := clientServiceClient.NewClient(
		cfg.ClientService.URL,
		time.Duration(cfg.ClientService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (SalonService=%s timeout=%ds, ClientService=%s timeout=%ds)",
		cfg.SalonService.URL, cfg.SalonService.Timeout, cfg.ClientService.URL, cfg.ClientService.Timeout)

	// Redis: кэш каталога SalonService и кэш слотов
	var (
		rdb         *redis.Client
		salonClient catalogcache.SalonServiceClient = salonHTTPClient
		slotCache   *slotcache.Cache
	)
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: time.Duration(cfg.Redis.DialTimeoutMilli) * time.Millisecond,
		})
		defer rdb.Close()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// кэш не обязателен: при ошибках Redis запросы идут в источник
			log.Warn("Redis ping failed, caches will degrade to origin: %v", err)
		}
		pingCancel()

		salonClient = catalogcache.NewClient(salonHTTPClient, rdb, time.Duration(cfg.Redis.CatalogTTL)*time.Second, log)
		slotCache = slotcache.New(rdb, time.Duration(cfg.Slots.CacheTTL)*time.Second)
		log.Info("Redis caches enabled (addr=%s, catalog_ttl=%ds, slots_ttl=%ds)",
			cfg.Redis.Addr, cfg.Redis.CatalogTTL, cfg.Slots.CacheTTL)
	} else {
		slotCache = slotcache.New(nil, 0)
	}

	// Сервисы
	accessChecker := access.NewChecker(salonClient, log)
	resolver := availabilityService.NewResolver(availabilityRepository, accessChecker, log)
	availabilitySvc := availabilityService.NewService(availabilityRepository, resolver, accessChecker, slotCache, log)
	aggregator := occupancy.NewAggregator(appointmentRepository, timeBlockRepository)
	bookingValidator := validator.New(resolver, aggregator)
	eventRecorder := events.NewRecorder(outboxRepository)
	policySvc := policyService.NewService(policyRepository, accessChecker, slotCache, log)
	appointmentsSvc := appointmentsService.NewService(appointmentRepository, accessChecker, log)
	timeBlocksSvc := timeBlocksService.NewService(
		timeBlockRepository,
		appointmentRepository,
		accessChecker,
		slotCache,
		txMgr,
		log,
	)

	// Use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		salonClient,
		policySvc,
		resolver,
		aggregator,
		slotCache,
		domainStats,
		log,
		getAvailableSlotsUC.Options{
			Concurrency:  cfg.Slots.Concurrency,
			MaxRangeDays: cfg.Slots.MaxRangeDays,
			Timeout:      time.Duration(cfg.Slots.GenerationTimeout) * time.Second,
		},
	)
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		salonClient,
		clientClient,
		policySvc,
		bookingValidator,
		eventRecorder,
		slotCache,
		txMgr,
		domainStats,
		log,
	)
	updateAppointmentUseCase := updateAppointmentUC.NewUseCase(
		appointmentRepository,
		salonClient,
		policySvc,
		bookingValidator,
		eventRecorder,
		slotCache,
		txMgr,
		domainStats,
		log,
	)
	cancelAppointmentUseCase := cancelAppointmentUC.NewUseCase(
		appointmentRepository,
		accessChecker,
		eventRecorder,
		slotCache,
		txMgr,
		domainStats,
		log,
	)

	// Воркер outbox -> Kafka
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	workerDone := make(chan struct{})

	if cfg.Outbox.Enabled {
		writer := outbox.NewKafkaWriter(cfg.Kafka.BrokerList(), cfg.Kafka.Topic)
		publisher := outbox.NewPublisher(
			outboxRepository,
			txMgr,
			writer,
			domainStats,
			log,
			outbox.Config{
				Topic:        cfg.Kafka.Topic,
				PollInterval: time.Duration(cfg.Outbox.PollInterval) * time.Millisecond,
				BatchSize:    cfg.Outbox.BatchSize,
			},
		)
		go func() {
			defer close(workerDone)
			defer func() {
				if err := writer.Close(); err != nil {
					log.Error("Failed to close kafka writer: %v", err)
				}
			}()
			publisher.Run(workerCtx)
		}()
		log.Info("Outbox publisher started (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		close(workerDone)
	}

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	updateAppointment := updateAppointmentHandler.NewHandler(updateAppointmentUseCase, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(cancelAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	getAppointmentHistory := getAppointmentHistoryHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(policySvc, log)
	updateBookingPolicy := updateBookingPolicyHandler.NewHandler(policySvc, log)
	availabilityRules := availabilityRulesHandler.NewHandler(availabilitySvc, log)
	availabilityOverrides := availabilityOverridesHandler.NewHandler(availabilitySvc, log)
	workingHours := workingHoursHandler.NewHandler(availabilitySvc, log)
	timeBlocks := timeBlocksHandler.NewHandler(timeBlocksSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimiterIdle)
		go limiter.RunCleanup(time.Minute, stopCh)
		api.Use(limiter.Limit)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/salons/{salonId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/salons/{salonId}/booking-policy", getBookingPolicy.Handle).Methods(http.MethodGet)
	api.HandleFunc("/salons/{salonId}/masters/{masterId}/working-hours", workingHours.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/salons/{salonId}/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/appointments/{appointmentId}", updateAppointment.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/salons/{salonId}/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/salons/{salonId}/appointments/{appointmentId}/history", getAppointmentHistory.Handle).Methods(http.MethodGet)

	// --- Политика записи (менеджеры) ---
	protected.HandleFunc("/salons/{salonId}/booking-policy", updateBookingPolicy.Handle).Methods(http.MethodPut)

	// --- Расписание мастеров ---
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-rules", availabilityRules.HandleGet).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-rules", availabilityRules.HandleSet).Methods(http.MethodPut)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-overrides", availabilityOverrides.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-overrides", availabilityOverrides.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-overrides/{date}", availabilityOverrides.HandleDelete).Methods(http.MethodDelete)

	// --- Блокировки времени ---
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/time-blocks", timeBlocks.HandleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/time-blocks", timeBlocks.HandleList).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/masters/{masterId}/time-blocks/{blockId}", timeBlocks.HandleDelete).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.Metrics.ServiceName),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Воркер outbox останавливается после HTTP-сервера
	stopWorker()
	select {
	case <-workerDone:
		log.Info("Outbox publisher stopped")
	case <-shutdownCtx.Done():
		log.Warn("Outbox publisher did not stop in time")
	}

	// Останавливаем фоновые сборщики (пул БД, очистка rate limiter)
	close(stopCh)

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to shut down tracing: %v", err)
	}

	log.Info("Server stopped gracefully")
}
