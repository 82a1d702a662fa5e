package result

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/repository"
)

// --- モック定義 ---

type mockResultRepo struct {
	insertFn        func(ctx context.Context, result *model.StudyResult) error
	listByStudyIDFn func(ctx context.Context, studyID string) ([]*model.StudyResult, error)
}

func (m *mockResultRepo) Insert(ctx context.Context, result *model.StudyResult) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, result)
	}
	return nil
}

func (m *mockResultRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.StudyResult, error) {
	if m.listByStudyIDFn != nil {
		return m.listByStudyIDFn(ctx, studyID)
	}
	return nil, nil
}

type mockStudyRepo struct {
	findLatestFn func(ctx context.Context) (*model.Study, error)
}

func (m *mockStudyRepo) InsertStudy(_ context.Context, _ *repository.StudyRows) error { return nil }

func (m *mockStudyRepo) FindByID(_ context.Context, _ string) (*model.Study, error) {
	return nil, nil
}

func (m *mockStudyRepo) FindLatest(ctx context.Context) (*model.Study, error) {
	if m.findLatestFn != nil {
		return m.findLatestFn(ctx)
	}
	return nil, nil
}

func (m *mockStudyRepo) ListAll(_ context.Context) ([]*model.Study, error) { return nil, nil }

func (m *mockStudyRepo) UpdateEnabled(_ context.Context, _ string, _ bool, _ int64) (bool, error) {
	return false, nil
}

func (m *mockStudyRepo) Delete(_ context.Context, _ string) (bool, error) { return false, nil }

var _ repository.ResultRepository = (*mockResultRepo)(nil)
var _ repository.StudyRepository = (*mockStudyRepo)(nil)

// validResultPayload はエンベロープと追加フィールドを持つ結果ペイロードを返す。
func validResultPayload() []byte {
	return []byte(`{
		"studyID": "study-1",
		"studyModTime": 1700000000,
		"sessionID": "session-abc",
		"startTime": 1700000100,
		"endTime": 1700000900,
		"participant": {"id": "p-1", "interactions": [{"postID": "P1", "reaction": "like"}]}
	}`)
}

// --- テスト ---

func TestUpload_ValidPayload_InsertsAndReturnsID(t *testing.T) {
	ctx := context.Background()

	var inserted *model.StudyResult
	resultRepo := &mockResultRepo{
		insertFn: func(ctx context.Context, result *model.StudyResult) error {
			inserted = result
			return nil
		},
	}

	svc := NewService(resultRepo, &mockStudyRepo{})

	raw := validResultPayload()
	id, err := svc.Upload(ctx, raw)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if id == "" {
		t.Fatal("expected non-empty entry ID")
	}
	if inserted == nil {
		t.Fatal("expected result to be inserted")
	}
	if inserted.ID != id {
		t.Errorf("inserted ID = %q, want %q", inserted.ID, id)
	}

	// エンベロープが非正規化カラムに展開されること
	if inserted.StudyID != "study-1" {
		t.Errorf("StudyID = %q, want %q", inserted.StudyID, "study-1")
	}
	if inserted.StudyModTime != 1700000000 {
		t.Errorf("StudyModTime = %d, want 1700000000", inserted.StudyModTime)
	}
	if inserted.SessionID != "session-abc" {
		t.Errorf("SessionID = %q, want %q", inserted.SessionID, "session-abc")
	}
	if inserted.StartTime != 1700000100 || inserted.EndTime != 1700000900 {
		t.Errorf("times = [%d, %d], want [1700000100, 1700000900]", inserted.StartTime, inserted.EndTime)
	}

	// ペイロード全体が受信したままの形で保存されること
	if string(inserted.Data) != string(raw) {
		t.Error("payload should be stored byte-for-byte as received")
	}
}

func TestUpload_NotJSON_ReturnsResultInvalid(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockResultRepo{}, &mockStudyRepo{})

	_, err := svc.Upload(ctx, []byte("not json at all"))
	if err == nil {
		t.Fatal("expected error for non-JSON payload")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeResultInvalid {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeResultInvalid)
	}
}

func TestUpload_MissingEnvelopeField_ReturnsResultInvalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		payload   string
		wantField string
	}{
		{"studyIDなし", `{"studyModTime": 1, "sessionID": "s", "startTime": 1, "endTime": 2}`, "studyID"},
		{"studyModTimeなし", `{"studyID": "x", "sessionID": "s", "startTime": 1, "endTime": 2}`, "studyModTime"},
		{"sessionIDなし", `{"studyID": "x", "studyModTime": 1, "startTime": 1, "endTime": 2}`, "sessionID"},
		{"startTimeなし", `{"studyID": "x", "studyModTime": 1, "sessionID": "s", "endTime": 2}`, "startTime"},
		{"endTimeなし", `{"studyID": "x", "studyModTime": 1, "sessionID": "s", "startTime": 1}`, "endTime"},
	}

	repo := &mockResultRepo{
		insertFn: func(ctx context.Context, result *model.StudyResult) error {
			t.Fatal("Insert should not be called for invalid payload")
			return nil
		},
	}
	svc := NewService(repo, &mockStudyRepo{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, []byte(tt.payload))
			if err == nil {
				t.Fatal("expected validation error")
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Code != model.ErrCodeResultInvalid {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeResultInvalid)
			}
			// 欠落フィールド名がメッセージに含まれる
			if !strings.Contains(apiErr.Message, tt.wantField) {
				t.Errorf("message %q should contain %q", apiErr.Message, tt.wantField)
			}
		})
	}
}

func TestUpload_ExplicitZeroTimes_AreValid(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockResultRepo{}, &mockStudyRepo{})

	// 明示的なゼロは欠落とは区別される（ポインタで検証する）
	payload := `{"studyID": "x", "studyModTime": 0, "sessionID": "s", "startTime": 0, "endTime": 0}`
	if _, err := svc.Upload(ctx, []byte(payload)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestUpload_InsertError_ReturnsWrappedError(t *testing.T) {
	ctx := context.Background()

	dbErr := errors.New("insert failed")
	repo := &mockResultRepo{
		insertFn: func(ctx context.Context, result *model.StudyResult) error {
			return dbErr
		},
	}

	svc := NewService(repo, &mockStudyRepo{})

	_, err := svc.Upload(ctx, validResultPayload())
	if err == nil {
		t.Fatal("expected error from Upload")
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

func TestListByStudy_ReturnsStoredPayloads(t *testing.T) {
	ctx := context.Background()

	repo := &mockResultRepo{
		listByStudyIDFn: func(ctx context.Context, studyID string) ([]*model.StudyResult, error) {
			return []*model.StudyResult{
				{ID: "r-1", Data: []byte(`{"sessionID":"s-1"}`)},
				{ID: "r-2", Data: []byte(`{"sessionID":"s-2"}`)},
			}, nil
		},
	}

	svc := NewService(repo, &mockStudyRepo{})

	payloads, err := svc.ListByStudy(ctx, "study-1")
	if err != nil {
		t.Fatalf("ListByStudy() error = %v", err)
	}

	if len(payloads) != 2 {
		t.Fatalf("payloads count = %d, want 2", len(payloads))
	}
	if string(payloads[0]) != `{"sessionID":"s-1"}` {
		t.Errorf("payloads[0] = %s, want stored payload", payloads[0])
	}
}

func TestListByStudy_Empty_ReturnsEmptySlice(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockResultRepo{}, &mockStudyRepo{})

	payloads, err := svc.ListByStudy(ctx, "study-1")
	if err != nil {
		t.Fatalf("ListByStudy() error = %v", err)
	}
	if payloads == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(payloads) != 0 {
		t.Errorf("payloads count = %d, want 0", len(payloads))
	}
}

func TestListFromLatest_NoStudies_ReturnsNil(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockResultRepo{}, &mockStudyRepo{})

	payloads, err := svc.ListFromLatest(ctx)
	if err != nil {
		t.Fatalf("ListFromLatest() error = %v", err)
	}

	// スタディが1件もない場合はnilスライス（JSONではnull）
	if payloads != nil {
		t.Errorf("payloads = %v, want nil", payloads)
	}

	data, _ := json.Marshal(payloads)
	if string(data) != "null" {
		t.Errorf("marshaled = %s, want null", data)
	}
}

func TestListFromLatest_ReturnsLatestStudyResults(t *testing.T) {
	ctx := context.Background()

	var queriedStudyID string
	studyRepo := &mockStudyRepo{
		findLatestFn: func(ctx context.Context) (*model.Study, error) {
			return &model.Study{ID: "study-latest"}, nil
		},
	}
	resultRepo := &mockResultRepo{
		listByStudyIDFn: func(ctx context.Context, studyID string) ([]*model.StudyResult, error) {
			queriedStudyID = studyID
			return []*model.StudyResult{{ID: "r-1", Data: []byte(`{}`)}}, nil
		},
	}

	svc := NewService(resultRepo, studyRepo)

	payloads, err := svc.ListFromLatest(ctx)
	if err != nil {
		t.Fatalf("ListFromLatest() error = %v", err)
	}

	if queriedStudyID != "study-latest" {
		t.Errorf("queried study ID = %q, want %q", queriedStudyID, "study-latest")
	}
	if len(payloads) != 1 {
		t.Errorf("payloads count = %d, want 1", len(payloads))
	}
}
