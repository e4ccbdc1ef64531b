package public

import (
	"log"
	"time"

	"github.com/go-chi/chi/v5"

	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	submissions    intakeapp.SubmissionService
	requestTimeout time.Duration
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	Submissions    intakeapp.SubmissionService
	RequestTimeout time.Duration
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		logger:         cfg.Logger,
		submissions:    cfg.Submissions,
		requestTimeout: timeout,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/submit", h.submitHandler())
	r.Get("/api/steps", h.stepsHandler())
}
