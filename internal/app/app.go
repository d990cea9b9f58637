// Package app assembles the Fiber application: middleware, error mapping,
// product routes, docs and metrics.
package app

import (
	"errors"
	"log/slog"

	"productos/internal/handlers"
	"productos/internal/middleware"
	"productos/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "productos/docs" // registers the OpenAPI document
)

// Options tunes the app. The zero value is usable.
type Options struct {
	// FrontendURL is the origin allowed to call the API; empty or "*" allows any.
	FrontendURL string
	// DisableRequestLog turns off the per-request access log line.
	DisableRequestLog bool
}

// NewApp wires the HTTP surface around an already constructed service.
func NewApp(productService *services.ProductService, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "productos",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if !opts.DisableRequestLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	origins := opts.FrontendURL
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,PUT,POST,DELETE,PATCH",
		AllowHeaders: "Content-Type",
	}))

	metrics := middleware.NewMetrics()
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	api.Get("/", handlers.HandleHealth)
	handlers.NewProductHandler(productService).RegisterRoutes(api)

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/docs/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/docs/*", adaptor.HTTPHandlerFunc(httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
		httpSwagger.DocExpansion("list"),
	)))

	return app
}

// ErrorHandler is the single place unexpected failures become responses.
// Fiber errors keep their status and message; anything else is logged and
// answered with a generic 500 that carries no internal detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(handlers.ErrorResponse{OK: false, Error: fe.Message})
	}

	slog.Error("request failed",
		"request_id", c.Locals(requestid.ConfigDefault.ContextKey),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(handlers.ErrorResponse{OK: false, Error: handlers.MsgInternalError})
}
