package api

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/poise/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/poise/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/poise/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/ws"
)

const Version = "0.1.0"

type Dependencies struct {
	Analyzer    handler.FrameAnalyzer
	Reports     handler.ReportService
	Speech      handler.SpeechService
	Decoder     handler.FrameDecoder
	Hub         *ws.Hub
	Metrics     *observe.Metrics
	Checks      []handler.ReadinessCheck
	CORSOrigins []string

	// FrameRateLimit caps frame uploads per session per minute; 0 disables it.
	FrameRateLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		AppName:               "Poise API",
		DisableStartupMessage: true,
		Immutable:             true,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	if r.deps.Metrics != nil {
		r.app.Use(middleware.Metrics(r.deps.Metrics))
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(r.deps.CORSOrigins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	healthHandler := handler.NewHealthHandler(Version, r.deps.Checks...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := r.app.Group("/v1")

	sessionHandler := handler.NewSessionHandler(r.deps.Analyzer, r.deps.Reports, r.deps.Decoder, r.deps.Hub, r.logger)
	frameHandlers := []fiber.Handler{sessionHandler.SubmitFrame}
	if r.deps.FrameRateLimit > 0 {
		cfg := middleware.DefaultRateLimiterConfig()
		cfg.Max = r.deps.FrameRateLimit
		r.rateLimiter = middleware.NewRateLimiter(cfg)
		frameHandlers = append([]fiber.Handler{r.rateLimiter.Handler()}, frameHandlers...)
	}
	v1.Post("/sessions/:session_id/frames", frameHandlers...)
	v1.Get("/sessions/:session_id/summary", sessionHandler.Summary)
	v1.Post("/sessions/:session_id/analyze", sessionHandler.Analyze)
	v1.Delete("/sessions/:session_id", sessionHandler.End)
	v1.Get("/reports/:session_id", sessionHandler.Report)

	speechHandler := handler.NewSpeechHandler(r.deps.Speech, r.deps.Hub, r.logger)
	v1.Post("/speech/answers", speechHandler.SubmitAnswer)
	v1.Post("/speech/sessions/:session_id/analyze", speechHandler.Analyze)
	v1.Get("/speech/sessions/:session_id/report", speechHandler.Report)
	v1.Delete("/speech/sessions/:session_id", speechHandler.End)

	// WebSocket endpoints
	wsGroup := v1.Group("/ws", ws.UpgradeMiddleware())
	wsGroup.Get("/video/:session_id", sessionHandler.Video())
	wsGroup.Get("/voice/:session_id/:question_id", speechHandler.Voice())
	wsGroup.Get("/monitor/:session_id", ws.Handler(r.deps.Hub))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
// The monitor hub is stopped by cancelling the context given to Hub.Run.
func (r *Router) Shutdown() error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}
	return r.app.Shutdown()
}
