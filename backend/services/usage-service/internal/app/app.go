package app

import (
	"context"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/clients"
	"energydash/backend/services/usage-service/internal/config"
	httpserver "energydash/backend/services/usage-service/internal/http"
	"energydash/backend/services/usage-service/internal/http/handlers"
	"energydash/backend/services/usage-service/internal/http/middleware"
	"energydash/backend/services/usage-service/internal/publisher"
	"energydash/backend/services/usage-service/internal/service"
	"energydash/backend/services/usage-service/internal/ws"
)

// App wires usage-service dependencies.
type App struct {
	server    *httpserver.Server
	hub       *ws.Hub
	stores    *Stores
	publisher *publisher.MQTTPublisher
	logger    *zap.Logger
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger)
	opts := service.Options{
		StoreTimeout: cfg.Store.Timeout,
		DefaultRate:  cfg.Billing.DefaultRatePerKWh,
		Notifier:     hub,
	}

	var mqttPublisher *publisher.MQTTPublisher
	if cfg.MQTTEnabled() {
		mqttPublisher, err = publisher.NewMQTTPublisher(publisher.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			// Publishing is best-effort; serve without it.
			logger.Warn("mqtt publishing disabled", zap.Error(err))
		} else {
			opts.Publisher = mqttPublisher
		}
	}

	usageService := service.NewUsageService(stores.Usage, opts, logger)
	settingsService := service.NewSettingsService(stores.Settings, cfg.Store.Timeout, logger)

	deps := httpserver.RouterDeps{
		UsageHandlers:    handlers.NewUsageHandlers(usageService, logger),
		SettingsHandlers: handlers.NewSettingsHandlers(settingsService, logger),
		LiveHandler:      handlers.NewLiveHandler(ws.NewServer(hub, cfg.WebSocket.WriteTimeout, logger)),
		HealthHandler:    handlers.NewHealthHandler(),
	}
	if cfg.ChatEnabled() {
		llm := clients.NewLLMClient(cfg.LLM.Endpoint, cfg.LLM.Model, cfg.LLM.APIKey, clients.NewDefaultHTTPClient(cfg.LLM.Timeout))
		assistant := service.NewAssistantService(usageService, llm, cfg.LLM.Timeout, logger)
		deps.ChatHandler = handlers.NewChatHandler(assistant, logger)
	} else {
		logger.Info("chat assistant disabled, no llm configured")
	}

	router := httpserver.NewRouter(deps, middleware.AuthMiddleware(middleware.AuthOptions{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server:    server,
		hub:       hub,
		stores:    stores,
		publisher: mqttPublisher,
		logger:    logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close drops live websocket clients and releases store connections and the broker session.
func (a *App) Close() {
	a.hub.CloseAll()
	if a.publisher != nil {
		a.publisher.Close()
	}
	if err := a.stores.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}
