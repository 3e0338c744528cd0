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

	bookingSessionHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/booking_session"
	cancelBookingHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/cancel_booking"
	createBlockHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/create_block"
	createBookingHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/create_booking"
	deleteBlockHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/delete_block"
	getAvailableSlotsHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/get_booking"
	getSalonBookingsHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/get_salon_bookings"
	getSalonStatusHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/get_salon_status"
	listBlocksHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/list_blocks"
	telegramWebhookHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/telegram_webhook"
	updateBookingStatusHandler "github.com/m04kA/SalonBookingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SalonBookingService/internal/config"
	"github.com/m04kA/SalonBookingService/internal/infra/broker"
	"github.com/m04kA/SalonBookingService/internal/infra/session"
	blockRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/block"
	bookingRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/booking"
	idempotencyRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/idempotency"
	masterRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/master"
	outboxRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/outbox"
	salonRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/salon"
	serviceRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/service"
	subscriptionRepo "github.com/m04kA/SalonBookingService/internal/infra/storage/subscription"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
	"github.com/m04kA/SalonBookingService/internal/scheduling"
	blocksService "github.com/m04kA/SalonBookingService/internal/service/blocks"
	bookingsService "github.com/m04kA/SalonBookingService/internal/service/bookings"
	bookingSessionUC "github.com/m04kA/SalonBookingService/internal/usecase/booking_session"
	createBookingUC "github.com/m04kA/SalonBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SalonBookingService/internal/usecase/get_available_slots"
	getSalonStatusUC "github.com/m04kA/SalonBookingService/internal/usecase/get_salon_status"
	notifyBookingUC "github.com/m04kA/SalonBookingService/internal/usecase/notify_booking"
	telegramCommandUC "github.com/m04kA/SalonBookingService/internal/usecase/telegram_command"
	"github.com/m04kA/SalonBookingService/internal/wizard"
	"github.com/m04kA/SalonBookingService/internal/worker/notifier"
	"github.com/m04kA/SalonBookingService/internal/worker/outbox"
	"github.com/m04kA/SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
	"github.com/m04kA/SalonBookingService/pkg/phone"
	"github.com/m04kA/SalonBookingService/pkg/tracing"
	"github.com/m04kA/SalonBookingService/pkg/txmanager"
)

// rateLimiterIdle через сколько неактивный клиент удаляется из лимитера
const rateLimiterIdle = 10 * time.Minute

// eventPublisher транспорт, в который outbox relay отдает события
type eventPublisher interface {
	Publish(ctx context.Context, msg broker.Message) error
	Close() error
}

// logMessenger заменяет Telegram, когда бот выключен: сообщения только пишутся в лог
type logMessenger struct {
	log *logger.Logger
}

func (m logMessenger) SendMessage(_ context.Context, chatID, text string) error {
	m.log.Info("Telegram disabled, message to chat=%s dropped: %s", chatID, text)
	return nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SalonBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Контекст фоновых воркеров, отменяется при остановке
	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Трассировка
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Metrics.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to setup tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Scheduling.Timezone, err)
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

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка работает как прокси, транзакции идут через неё же
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	if cfg.Metrics.Enabled {
		log.Info("Database metrics collection started")
	}

	// Подключаемся к Redis (сессии мастера бронирования)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
	}
	log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

	// Инициализируем репозитории
	salonRepository := salonRepo.NewRepository(wrappedDB)
	masterRepository := masterRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	blockRepository := blockRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	idempotencyRepository := idempotencyRepo.NewRepository(wrappedDB)
	subscriptionRepository := subscriptionRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)
	sessionStore := session.NewStore(redisClient, cfg.Redis.SessionTTLDuration())

	// Расписание
	grid, err := scheduling.NewGrid(cfg.Scheduling.SlotIntervalMinutes, cfg.Scheduling.DefaultServiceDuration)
	if err != nil {
		log.Fatal("Invalid scheduling config: %v", err)
	}
	resolver := scheduling.NewResolver(cfg.Scheduling.WeekdayNames, cfg.Scheduling.ClosedMarker, log)
	phoneNormalizer := phone.NewNormalizer(cfg.Scheduling.PhoneRegion, cfg.Scheduling.MinPhoneDigits)
	machine := wizard.NewMachine(grid, phoneNormalizer)
	log.Info("Scheduling initialized (interval=%dm, horizon=%dd, tz=%s)",
		cfg.Scheduling.SlotIntervalMinutes, cfg.Scheduling.BookingHorizonDays, location)

	clock := &createBookingUC.RealTimeProvider{Location: location}

	// Telegram
	var messenger interface {
		SendMessage(ctx context.Context, chatID, text string) error
	}
	if cfg.Notifications.Telegram.Enabled {
		messenger = telegram.NewClient(
			cfg.Notifications.Telegram.BaseURL,
			cfg.Notifications.Telegram.BotToken,
			time.Duration(cfg.Notifications.Telegram.Timeout)*time.Second,
			log,
		)
		log.Info("Telegram client initialized (timeout=%ds)", cfg.Notifications.Telegram.Timeout)
	} else {
		messenger = logMessenger{log: log}
		log.Warn("Telegram is disabled, notifications will only be logged")
	}

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		salonRepository,
		masterRepository,
		blockRepository,
		serviceRepository,
		resolver,
		grid,
		cfg.Scheduling.BookingHorizonDays,
		&getAvailableSlotsUC.RealTimeProvider{Location: location},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		salonRepository,
		masterRepository,
		serviceRepository,
		blockRepository,
		bookingRepository,
		outboxRepository,
		idempotencyRepository,
		txMgr,
		phoneNormalizer,
		resolver,
		grid,
		cfg.Scheduling.BookingHorizonDays,
		metricsCollector,
		clock,
		log,
	)

	getSalonStatusUseCase := getSalonStatusUC.NewUseCase(salonRepository, resolver, clock, log)

	bookingSessionUseCase := bookingSessionUC.NewUseCase(
		sessionStore,
		machine,
		salonRepository,
		serviceRepository,
		getAvailableSlotsUseCase,
		createBookingUseCase,
		log,
	)

	notifyBookingUseCase := notifyBookingUC.NewUseCase(
		bookingRepository,
		subscriptionRepository,
		messenger,
		metricsCollector,
		log,
	)

	telegramCommandUseCase := telegramCommandUC.NewUseCase(subscriptionRepository, messenger, log)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		blockRepository,
		salonRepository,
		outboxRepository,
		txMgr,
		log,
	)
	blockSvc := blocksService.NewService(
		blockRepository,
		salonRepository,
		masterRepository,
		log,
	)

	// Доставка событий: outbox -> брокер -> уведомления
	dispatcher := notifier.NewDispatcher(notifyBookingUseCase, log)

	var publisher eventPublisher
	switch cfg.Notifications.Broker {
	case config.BrokerKafka:
		publisher = broker.NewKafkaPublisher(cfg.Notifications.Kafka.Brokers)
		consumer := broker.NewKafkaConsumer(
			cfg.Notifications.Kafka.Brokers,
			cfg.Notifications.Kafka.GroupID,
			dispatcher.Handle,
			log,
		)
		go consumer.Run(ctx)
		log.Info("Kafka broker initialized (brokers=%v, group=%s)",
			cfg.Notifications.Kafka.Brokers, cfg.Notifications.Kafka.GroupID)
	case config.BrokerRabbitMQ:
		publisher = broker.NewRabbitPublisher(cfg.Notifications.RabbitMQ.URL, cfg.Notifications.RabbitMQ.Queue)
		consumer := broker.NewRabbitConsumer(
			cfg.Notifications.RabbitMQ.URL,
			cfg.Notifications.RabbitMQ.Queue,
			dispatcher.Handle,
			log,
		)
		go consumer.Run(ctx)
		log.Info("RabbitMQ broker initialized (queue=%s)", cfg.Notifications.RabbitMQ.Queue)
	default:
		publisher = broker.NewInProcPublisher(dispatcher.Handle)
		log.Info("External broker is disabled, events are dispatched in-process")
	}

	relay := outbox.NewRelay(
		outboxRepository,
		publisher,
		txMgr,
		metricsCollector,
		log,
		outbox.Config{
			PollInterval: cfg.Notifications.Outbox.PollIntervalDuration(),
			BatchSize:    cfg.Notifications.Outbox.BatchSize,
			MaxAttempts:  cfg.Notifications.Outbox.MaxAttempts,
			Lease:        cfg.Notifications.Outbox.LeaseDuration(),
		},
	)
	go relay.Run(ctx)

	// Инициализируем handlers
	getSalonStatus := getSalonStatusHandler.NewHandler(getSalonStatusUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	bookingSession := bookingSessionHandler.NewHandler(bookingSessionUseCase, log)
	telegramWebhook := telegramWebhookHandler.NewHandler(
		telegramCommandUseCase,
		cfg.Notifications.Telegram.WebhookSecret,
		log,
	)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getSalonBookings := getSalonBookingsHandler.NewHandler(bookingSvc, log)
	createBlock := createBlockHandler.NewHandler(blockSvc, log)
	listBlocks := listBlocksHandler.NewHandler(blockSvc, log)
	deleteBlock := deleteBlockHandler.NewHandler(blockSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Статус салона (открыт/закрыт, ближайшее открытие)
	api.HandleFunc("/salons/{slug}/status", getSalonStatus.Handle).Methods(http.MethodGet)

	// Доступные слоты мастера или любого мастера на дату
	api.HandleFunc("/salons/{salonId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Webhook Telegram бота
	api.HandleFunc("/telegram/webhook", telegramWebhook.Handle).Methods(http.MethodPost)

	// Запись клиентов ограничена по IP
	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.Run(ctx, rateLimiterIdle)
		public.Use(limiter.Middleware)
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// --- Бронирование клиентом ---
	public.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// --- Мастер бронирования ---
	public.HandleFunc("/booking-sessions", bookingSession.Start).Methods(http.MethodPost)
	public.HandleFunc("/booking-sessions/{sessionId}", bookingSession.Get).Methods(http.MethodGet)
	public.HandleFunc("/booking-sessions/{sessionId}/events", bookingSession.Apply).Methods(http.MethodPost)
	public.HandleFunc("/booking-sessions/{sessionId}", bookingSession.Delete).Methods(http.MethodDelete)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header, только владелец салона)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/salons/{salonId}/bookings", getSalonBookings.Handle).Methods(http.MethodGet)

	// --- Блокировки расписания ---
	protected.HandleFunc("/salons/{salonId}/blocks", createBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/blocks", listBlocks.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/blocks/{blockId}", deleteBlock.Handle).Methods(http.MethodDelete)

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

	// Ожидаем сигнал завершения
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

	// Останавливаем relay, консьюмеры и лимитер
	stopWorkers()
	if err := publisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
