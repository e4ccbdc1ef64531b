package public

import "github.com/sngm3741/affiliate-intake/api/internal/intake/domain"

type submitSuccessResponse struct {
	Success  bool `json:"success"`
	Response any  `json:"response"`
}

// submitErrorResponse keeps details even when null so clients can rely on the key.
type submitErrorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	HelpfulMessage string `json:"helpfulMessage,omitempty"`
	Details        any    `json:"details"`
}

type stepsResponse struct {
	Variant domain.Variant `json:"variant"`
	Steps   []domain.Step  `json:"steps"`
	Notes   []string       `json:"notes"`
}
