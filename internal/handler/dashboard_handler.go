package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
// study.Serviceの部分集合として定義する。
type DashboardServiceInterface interface {
	// FinishedParticipantCount はゲームを完了した参加者数を返す。
	FinishedParticipantCount(ctx context.Context, studyID string) (int, error)
}

// DashboardHandler は研究者向けダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// ParticipantCount はスタディの完了参加者数を返す。
// レスポンスの"Successfull"のつづりはレガシークライアントが照合している。
// POST /dashboard/{study_id}
func (h *DashboardHandler) ParticipantCount(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "study_id")

	count, err := h.service.FinishedParticipantCount(r.Context(), studyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Successfull",
		"participant_count": count,
	})
}
