package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/study"
)

// --- モック定義 ---

type mockStudyService struct {
	uploadFn     func(ctx context.Context, doc *study.StudyDocument) (string, error)
	getFn        func(ctx context.Context, id string) (*study.StudyDocument, error)
	listFn       func(ctx context.Context) ([]*study.StudyDocument, error)
	setEnabledFn func(ctx context.Context, id string, enabled bool, lastModifiedTime int64) error
	deleteFn     func(ctx context.Context, id string) error
}

func (m *mockStudyService) Upload(ctx context.Context, doc *study.StudyDocument) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, doc)
	}
	return "", nil
}

func (m *mockStudyService) Get(ctx context.Context, id string) (*study.StudyDocument, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockStudyService) List(ctx context.Context) ([]*study.StudyDocument, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockStudyService) SetEnabled(ctx context.Context, id string, enabled bool, lastModifiedTime int64) error {
	if m.setEnabledFn != nil {
		return m.setEnabledFn(ctx, id, enabled, lastModifiedTime)
	}
	return nil
}

func (m *mockStudyService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockImageUploader struct {
	uploadImageFn func(ctx context.Context, path, base64Data string) (string, error)
}

func (m *mockImageUploader) UploadImage(ctx context.Context, path, base64Data string) (string, error) {
	if m.uploadImageFn != nil {
		return m.uploadImageFn(ctx, path, base64Data)
	}
	return "", nil
}

// --- テスト ---

func TestStudyHandler_Upload_Success_ReturnsLegacyMessage(t *testing.T) {
	svc := &mockStudyService{
		uploadFn: func(ctx context.Context, doc *study.StudyDocument) (string, error) {
			if doc.AuthorID != "admin-1" {
				t.Errorf("authorID = %q, want %q", doc.AuthorID, "admin-1")
			}
			return "study-id-new", nil
		},
	}
	h := NewStudyHandler(svc, &mockImageUploader{}, nil)

	body := strings.NewReader(`{"authorID":"admin-1","authorName":"Researcher"}`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload", body)
	w := httptest.NewRecorder()

	h.Upload(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Success" {
		t.Errorf("message = %q, want %q", got.Message, "Success")
	}
}

func TestStudyHandler_Upload_MalformedJSON_ReturnsBadRequest(t *testing.T) {
	h := NewStudyHandler(&mockStudyService{}, &mockImageUploader{}, nil)

	body := strings.NewReader(`{broken`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload", body)
	w := httptest.NewRecorder()

	h.Upload(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestStudyHandler_Upload_ValidationError_ReturnsUnprocessableEntity(t *testing.T) {
	svc := &mockStudyService{
		uploadFn: func(ctx context.Context, doc *study.StudyDocument) (string, error) {
			return "", model.NewDocumentInvalidError("basicSettings.name", "必須フィールドがありません")
		},
	}
	h := NewStudyHandler(svc, &mockImageUploader{}, nil)

	body := strings.NewReader(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload", body)
	w := httptest.NewRecorder()

	h.Upload(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Code != model.ErrCodeDocumentInvalid {
		t.Errorf("error code = %q, want %q", got.Code, model.ErrCodeDocumentInvalid)
	}
	if !strings.Contains(got.Message, "basicSettings.name") {
		t.Errorf("error message should name the violated field, got %q", got.Message)
	}
}

func TestStudyHandler_Get_NotFound_ReturnsNotFound(t *testing.T) {
	svc := &mockStudyService{
		getFn: func(ctx context.Context, id string) (*study.StudyDocument, error) {
			return nil, model.NewStudyNotFoundError(id)
		},
	}
	deps := newTestRouterDeps(t, &RouterDeps{StudyService: svc})

	rec := doRequest(t, NewRouter(deps), http.MethodGet, "/study/get/missing-study", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStudyHandler_ListAll_Empty_ReturnsEmptyArray(t *testing.T) {
	svc := &mockStudyService{
		listFn: func(ctx context.Context) ([]*study.StudyDocument, error) {
			return []*study.StudyDocument{}, nil
		},
	}
	h := NewStudyHandler(svc, &mockImageUploader{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/study/all", nil)
	w := httptest.NewRecorder()

	h.ListAll(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := strings.TrimSpace(w.Body.String())
	if body != "[]" {
		t.Errorf("body = %q, want %q", body, "[]")
	}
}

func TestStudyHandler_SetEnabled_Success_CallsService(t *testing.T) {
	var gotID string
	var gotEnabled bool
	var gotModTime int64
	svc := &mockStudyService{
		setEnabledFn: func(ctx context.Context, id string, enabled bool, lastModifiedTime int64) error {
			gotID, gotEnabled, gotModTime = id, enabled, lastModifiedTime
			return nil
		},
	}
	h := NewStudyHandler(svc, &mockImageUploader{}, nil)

	body := strings.NewReader(`{"id":"study-1","enabled":true,"last_modified_time":1724500000}`)
	req := httptest.NewRequest(http.MethodPut, "/study/enable", body)
	w := httptest.NewRecorder()

	h.SetEnabled(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotID != "study-1" || !gotEnabled || gotModTime != 1724500000 {
		t.Errorf("service called with (%q, %v, %d)", gotID, gotEnabled, gotModTime)
	}
}

func TestStudyHandler_SetEnabled_MissingID_ReturnsBadRequest(t *testing.T) {
	h := NewStudyHandler(&mockStudyService{}, &mockImageUploader{}, nil)

	body := strings.NewReader(`{"enabled":true,"last_modified_time":1724500000}`)
	req := httptest.NewRequest(http.MethodPut, "/study/enable", body)
	w := httptest.NewRecorder()

	h.SetEnabled(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestStudyHandler_Delete_NotFound_ReturnsNotFound(t *testing.T) {
	svc := &mockStudyService{
		deleteFn: func(ctx context.Context, id string) error {
			return model.NewStudyNotFoundError(id)
		},
	}
	deps := newTestRouterDeps(t, &RouterDeps{StudyService: svc})

	rec := doAdminRequest(t, NewRouter(deps), http.MethodDelete, "/study/delete/missing-study", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStudyHandler_UploadBase64Image_Success_ReturnsURL(t *testing.T) {
	uploader := &mockImageUploader{
		uploadImageFn: func(ctx context.Context, path, base64Data string) (string, error) {
			if path != "/assets/Studies/study-1/avatar.png" {
				t.Errorf("path = %q", path)
			}
			return "https://bucket.s3.amazonaws.com/studies/avatar.png", nil
		},
	}
	h := NewStudyHandler(&mockStudyService{}, uploader, nil)

	body := strings.NewReader(`{"path":"/assets/Studies/study-1/avatar.png","image_data":"aGVsbG8="}`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload-base64-image", body)
	w := httptest.NewRecorder()

	h.UploadBase64Image(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["url"] != "https://bucket.s3.amazonaws.com/studies/avatar.png" {
		t.Errorf("url = %q", got["url"])
	}
}

func TestStudyHandler_UploadBase64Image_InvalidImage_ReturnsBadRequest(t *testing.T) {
	uploader := &mockImageUploader{
		uploadImageFn: func(ctx context.Context, path, base64Data string) (string, error) {
			return "", model.NewImageInvalidError("Base64のデコードに失敗しました")
		},
	}
	h := NewStudyHandler(&mockStudyService{}, uploader, nil)

	body := strings.NewReader(`{"path":"/assets/Studies/study-1/avatar.png","image_data":"%%%"}`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload-base64-image", body)
	w := httptest.NewRecorder()

	h.UploadBase64Image(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestStudyHandler_Upload_InternalError_ReturnsInternalServerError(t *testing.T) {
	svc := &mockStudyService{
		uploadFn: func(ctx context.Context, doc *study.StudyDocument) (string, error) {
			return "", errors.New("db connection lost")
		},
	}
	h := NewStudyHandler(svc, &mockImageUploader{}, nil)

	body := strings.NewReader(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/study/upload", body)
	w := httptest.NewRecorder()

	h.Upload(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}
