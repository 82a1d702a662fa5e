// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haddriax/MisinformationGame-API/internal/metrics"
	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/study"
)

// StudyServiceInterface はスタディハンドラーが必要とするサービスインターフェース。
type StudyServiceInterface interface {
	// Upload はドキュメントを検証・変換して保存し、スタディIDを返す。
	Upload(ctx context.Context, doc *study.StudyDocument) (string, error)
	// Get は指定IDのスタディを完全なドキュメントとして返す。
	Get(ctx context.Context, id string) (*study.StudyDocument, error)
	// List は全スタディを完全なドキュメントの一覧として返す。
	List(ctx context.Context) ([]*study.StudyDocument, error)
	// SetEnabled はスタディの有効フラグと最終更新時刻を更新する。
	SetEnabled(ctx context.Context, id string, enabled bool, lastModifiedTime int64) error
	// Delete はスタディとその所有行を削除する。
	Delete(ctx context.Context, id string) error
}

// ImageUploader は画像アップロードのためのインターフェース。
// blob.ImageStoreの部分集合として定義する。
type ImageUploader interface {
	UploadImage(ctx context.Context, path, base64Data string) (string, error)
}

// StudyHandler はスタディ管理のHTTPハンドラー。
type StudyHandler struct {
	service  StudyServiceInterface
	uploader ImageUploader
	metrics  metrics.MetricsCollector
}

// NewStudyHandler はStudyHandlerを生成する。
func NewStudyHandler(service StudyServiceInterface, uploader ImageUploader, collector metrics.MetricsCollector) *StudyHandler {
	return &StudyHandler{
		service:  service,
		uploader: uploader,
		metrics:  collector,
	}
}

// updateStudyRequest はスタディ有効化リクエストのボディ。
type updateStudyRequest struct {
	ID               string `json:"id"`
	Enabled          bool   `json:"enabled"`
	LastModifiedTime int64  `json:"last_modified_time"`
}

// uploadImageRequest は画像アップロードリクエストのボディ。
type uploadImageRequest struct {
	Path      string `json:"path"`
	ImageData string `json:"image_data"`
}

// messageResponse はレガシークライアント互換のメッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Upload はスタディドキュメントのアップロードを処理する。
// POST /study/upload
func (h *StudyHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var doc study.StudyDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		if h.metrics != nil {
			h.metrics.RecordStudyUploadFailure("malformed_json")
		}
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	studyID, err := h.service.Upload(r.Context(), &doc)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordStudyUploadFailure(uploadFailureReason(err))
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordStudyUpload()
	}
	slog.Info("study uploaded", slog.String("study_id", studyID))

	writeJSON(w, http.StatusOK, messageResponse{Message: "Success"})
}

// Get はスタディを完全なドキュメントとして返す。
// GET /study/get/{study_id}
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "study_id")

	doc, err := h.service.Get(r.Context(), studyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// ListAll は全スタディを完全なドキュメントの一覧として返す。
// スタディが1件もない場合は空の配列を返す。
// GET /study/all
func (h *StudyHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// SetEnabled はスタディの有効フラグを更新する。
// PUT /study/enable
func (h *StudyHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req updateStudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}
	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "スタディIDが空です。",
			Category: "validation",
			Action:   "idフィールドを指定してください。",
		})
		return
	}

	if err := h.service.SetEnabled(r.Context(), req.ID, req.Enabled, req.LastModifiedTime); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Success"})
}

// Delete はスタディを削除する。
// DELETE /study/delete/{study_id}
func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	studyID := chi.URLParam(r, "study_id")

	if err := h.service.Delete(r.Context(), studyID); err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("study deleted", slog.String("study_id", studyID))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Success"})
}

// UploadBase64Image はBase64エンコードされた画像をオブジェクトストレージに保存する。
// POST /study/upload-base64-image
func (h *StudyHandler) UploadBase64Image(w http.ResponseWriter, r *http.Request) {
	var req uploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	url, err := h.uploader.UploadImage(r.Context(), req.Path, req.ImageData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordImageUpload()
	}
	slog.Info("image uploaded", slog.String("url", url))

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// --- ヘルパー関数 ---

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeStudyNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeDocumentInvalid, model.ErrCodeResultInvalid:
		return http.StatusUnprocessableEntity
	case model.ErrCodeImageInvalid:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeDataIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// uploadFailureReason はアップロード失敗のメトリクスラベル用の理由を返す。
func uploadFailureReason(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeDocumentInvalid:
			return "validation"
		default:
			return "internal"
		}
	}
	return "internal"
}
