package public

import (
	"net/http"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
	"github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/common"
)

// stepsHandler returns the step descriptors of a wizard variant.
func (h *Handler) stepsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variant, err := domain.ParseVariant(r.URL.Query().Get("variant"))
		if err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, stepsResponse{
			Variant: variant,
			Steps:   domain.StepsFor(variant),
			Notes:   domain.ConfirmationNotes,
		})
	}
}
