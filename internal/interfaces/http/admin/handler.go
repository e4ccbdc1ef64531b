package admin

import (
	"log"

	"github.com/go-chi/chi/v5"

	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger            *log.Logger
	failedSubmissions intakeapp.FailedSubmissionService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger            *log.Logger
	FailedSubmissions intakeapp.FailedSubmissionService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:            cfg.Logger,
		failedSubmissions: cfg.FailedSubmissions,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/failed-submissions", h.failedSubmissionListHandler())
	r.Get("/failed-submissions/{id}", h.failedSubmissionDetailHandler())
	r.Patch("/failed-submissions/{id}", h.failedSubmissionResolveHandler())
}
