package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
	"github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/common"
)

// submitHandler は完成した回答セットを受け取り、シートへ 1 行追記する。
// 失敗はすべて JSON のエラーエンベロープへ変換し、生のエラーは返さない。
// 追記の成否は 200 / 500 で返すが、JSON として読めない本文だけは追記を試みずに
// 同じエンベロープを 400 で返す。
func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var app domain.Application
		decoder := json.NewDecoder(io.LimitReader(r.Body, common.MaxSubmitRequestBody))
		if err := decoder.Decode(&app); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, submitErrorResponse{
				Success: false,
				Error:   fmt.Sprintf("Invalid request body: %v", err),
			})
			return
		}
		trimApplication(&app)

		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		ack, err := h.submissions.Submit(ctx, app)
		if err != nil {
			h.writeSubmitError(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, submitSuccessResponse{
			Success:  true,
			Response: ack.Response,
		})
	}
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var subErr *intakeapp.SubmissionError
	if !errors.As(err, &subErr) {
		h.logger.Printf("応募の送信で想定外のエラー: %v", err)
		common.WriteJSON(h.logger, w, http.StatusInternalServerError, submitErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	common.WriteJSON(h.logger, w, http.StatusInternalServerError, submitErrorResponse{
		Success:        false,
		Error:          subErr.Message,
		HelpfulMessage: subErr.HelpfulMessage,
		Details:        subErr.Details,
	})
}

func trimApplication(app *domain.Application) {
	app.Region = strings.TrimSpace(app.Region)
	app.Country = strings.TrimSpace(app.Country)
	app.Name = strings.TrimSpace(app.Name)
	app.Email = strings.TrimSpace(app.Email)
	app.Telegram = strings.TrimSpace(app.Telegram)
	app.SocialPlatform = strings.TrimSpace(app.SocialPlatform)
	app.PreferredContactMethod = strings.TrimSpace(app.PreferredContactMethod)
	if app.SocialPlatformLink != nil {
		link := strings.TrimSpace(*app.SocialPlatformLink)
		app.SocialPlatformLink = &link
	}
	if app.Twitter != nil {
		handle := strings.TrimSpace(*app.Twitter)
		app.Twitter = &handle
	}
}
