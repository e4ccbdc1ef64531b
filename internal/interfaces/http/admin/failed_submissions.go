package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	intakeapp "github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/interfaces/http/common"
)

func (h *Handler) failedSubmissionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page, _ := common.ParsePositiveInt(query.Get("page"), 1)
		limit, _ := common.ParsePositiveInt(query.Get("limit"), intakeapp.DefaultPagingLimit)

		filter := intakeapp.FailedSubmissionFilter{
			Kind:            strings.TrimSpace(query.Get("kind")),
			IncludeResolved: common.ParseBool(query.Get("includeResolved")),
		}
		paging := intakeapp.Paging{Page: page, Limit: limit}.Normalize()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		records, err := h.failedSubmissions.List(ctx, filter, paging)
		if err != nil {
			h.logger.Printf("admin failed submission list fetch failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "送信失敗ログの取得に失敗しました"})
			return
		}

		items := make([]failedSubmissionResponse, 0, len(records))
		for _, record := range records {
			items = append(items, toFailedSubmissionResponse(record))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, failedSubmissionListResponse{Items: items, Page: paging.Page, Limit: paging.Limit})
	}
}

func (h *Handler) failedSubmissionDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "IDが指定されていません"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := h.failedSubmissions.Detail(ctx, idParam)
		if err != nil {
			if errors.Is(err, intakeapp.ErrFailedSubmissionNotFound) {
				common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "送信失敗ログが見つかりません"})
				return
			}
			h.logger.Printf("admin failed submission detail fetch failed id=%s err=%v", idParam, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "送信失敗ログの取得に失敗しました"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, toFailedSubmissionResponse(*record))
	}
}

func (h *Handler) failedSubmissionResolveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := strings.TrimSpace(chi.URLParam(r, "id"))
		if idParam == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "IDが指定されていません"})
			return
		}

		var req resolveFailedSubmissionRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxAdminRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
			return
		}
		if req.Resolved == nil || !*req.Resolved {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "resolved=true のみ指定できます"})
			return
		}

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "認証情報が見つかりません"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := h.failedSubmissions.Resolve(ctx, idParam, resolverName(user))
		if err != nil {
			if errors.Is(err, intakeapp.ErrFailedSubmissionNotFound) {
				common.WriteJSON(h.logger, w, http.StatusNotFound, map[string]string{"error": "送信失敗ログが見つかりません"})
				return
			}
			h.logger.Printf("admin failed submission resolve failed id=%s err=%v", idParam, err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "送信失敗ログの更新に失敗しました"})
			return
		}

		h.logger.Printf("送信失敗ログを解決済みに更新 id=%s by=%s", idParam, updated.ResolvedBy)
		common.WriteJSON(h.logger, w, http.StatusOK, toFailedSubmissionResponse(*updated))
	}
}

func resolverName(user common.AuthenticatedUser) string {
	if name := strings.TrimSpace(user.Username); name != "" {
		return name
	}
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.ID
}
