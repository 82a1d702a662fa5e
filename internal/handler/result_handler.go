package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haddriax/MisinformationGame-API/internal/metrics"
	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// 結果ペイロードの最大サイズ（バイト）。巨大なアップロードを弾く。
const maxResultBodySize = 10 << 20 // 10MiB

// ResultServiceInterface は結果ハンドラーが必要とするサービスインターフェース。
type ResultServiceInterface interface {
	// Upload は結果ドキュメントを検証して保存し、エントリIDを返す。
	Upload(ctx context.Context, raw []byte) (string, error)
	// ListByStudy はスタディの全結果ペイロードを返す。
	ListByStudy(ctx context.Context, studyID string) ([]json.RawMessage, error)
	// ListFromLatest は最新スタディの全結果を返す。スタディ不在時はnil。
	ListFromLatest(ctx context.Context) ([]json.RawMessage, error)
}

// ResultHandler は参加者の結果アップロード・取得のHTTPハンドラー。
type ResultHandler struct {
	service ResultServiceInterface
	metrics metrics.MetricsCollector
}

// NewResultHandler はResultHandlerを生成する。
func NewResultHandler(service ResultServiceInterface, collector metrics.MetricsCollector) *ResultHandler {
	return &ResultHandler{
		service: service,
		metrics: collector,
	}
}

// resultListResponse は結果一覧のレスポンスエンベロープ。
type resultListResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Upload は結果ドキュメントのアップロードを処理する。
// POST /result/upload
func (h *ResultHandler) Upload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxResultBodySize))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの読み取りに失敗しました。",
			Category: "validation",
			Action:   "リクエストを確認して再度お試しください。",
		})
		return
	}

	entryID, err := h.service.Upload(r.Context(), raw)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordResultUpload()
	}
	slog.Info("study result uploaded", slog.String("entry_id", entryID))

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Study result uploaded successfully",
		"entry_id": entryID,
	})
}

// ListByStudy は指定スタディの全結果を返す。
// POST /result/get_all/{study_id}
func (h *ResultHandler) ListByStudy(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "study_id")

	payloads, err := h.service.ListByStudy(r.Context(), studyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultListResponse{Data: payloads})
}

// ListFromLatest は最新スタディの全結果を返す。
// スタディが1件もない場合はnullを返す（レガシークライアント互換）。
// POST /result/get_all_from_latest
func (h *ResultHandler) ListFromLatest(w http.ResponseWriter, r *http.Request) {
	payloads, err := h.service.ListFromLatest(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// nilスライスはJSONのnullとして、空スライスは[]として書き込まれる。
	writeJSON(w, http.StatusOK, payloads)
}
