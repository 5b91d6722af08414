package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/math-u-t/litedrive/internal/auth"
	"github.com/math-u-t/litedrive/internal/service"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Files          service.FileService
	Health         Pinger
	PublishableKey string
	// Verifier, when set, requires a bearer token whose subject owns the request.
	Verifier *auth.Verifier
	// Gatherer, when set, is exposed on /metrics.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/health", HealthCheck(d.Health))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/config", ClientConfig(d.PublishableKey))
	api.Get("/session", SessionInfo(d.Verifier))

	ownerQuery, ownerBody := passThrough, passThrough
	if d.Verifier != nil {
		ownerQuery = auth.RequireOwner(d.Verifier, auth.OwnerFromQuery)
		ownerBody = auth.RequireOwner(d.Verifier, auth.OwnerFromBody)
	}

	api.Post("/upload", ownerBody, UploadFile(d.Files, validate))
	// Add, unlike Get, does not also register HEAD.
	api.Add(fiber.MethodGet, "/list", ownerQuery, ListFiles(d.Files))
	api.Delete("/delete", ownerBody, DeleteFile(d.Files, validate))

	// Registered last so the specific methods above win.
	for _, p := range []string{"/upload", "/list", "/delete"} {
		api.All(p, MethodNotAllowed())
	}
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
