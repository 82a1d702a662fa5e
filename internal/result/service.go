// Package result は参加者セッションの結果ペイロードの保存と取得を提供する。
// 結果ドキュメントは不透明なJSONとして保存され、クエリ用に
// 非正規化された5つのフィールドだけが列に展開される。
package result

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/repository"
)

// Envelope は結果ドキュメントのうちクエリに使う非正規化フィールドを表す。
// 残りのペイロード（states, participant, interactions等）は検証せず
// そのままJSONとして保存される。
type Envelope struct {
	StudyID      string `json:"studyID" validate:"required"`
	StudyModTime *int64 `json:"studyModTime" validate:"required"`
	SessionID    string `json:"sessionID" validate:"required"`
	StartTime    *int64 `json:"startTime" validate:"required"`
	EndTime      *int64 `json:"endTime" validate:"required"`
}

var envelopeValidator = newEnvelopeValidator()

func newEnvelopeValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Service は結果のアップロードと取得のサービス層。
type Service struct {
	resultRepo repository.ResultRepository
	studyRepo  repository.StudyRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(resultRepo repository.ResultRepository, studyRepo repository.StudyRepository) *Service {
	return &Service{resultRepo: resultRepo, studyRepo: studyRepo}
}

// Upload は結果ドキュメントを検証して保存し、採番されたエントリIDを返す。
// ペイロード全体は受信したままの形で保存される。
func (s *Service) Upload(ctx context.Context, raw []byte) (string, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", model.NewResultInvalidError("JSONとして解釈できません")
	}

	if err := envelopeValidator.Struct(&envelope); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return "", fmt.Errorf("結果ドキュメントの検証に失敗しました: %w", err)
		}
		return "", model.NewResultInvalidError(
			fmt.Sprintf("必須フィールド %s がありません", verrs[0].Field()))
	}

	entry := &model.StudyResult{
		ID:           uuid.NewString(),
		StudyID:      envelope.StudyID,
		StudyModTime: *envelope.StudyModTime,
		SessionID:    envelope.SessionID,
		StartTime:    *envelope.StartTime,
		EndTime:      *envelope.EndTime,
		Data:         raw,
		CreatedAt:    time.Now(),
	}

	if err := s.resultRepo.Insert(ctx, entry); err != nil {
		return "", fmt.Errorf("結果の保存に失敗しました: %w", err)
	}

	return entry.ID, nil
}

// ListByStudy はスタディの全結果を保存時のペイロードのまま返す。
// 結果が1件もない場合は空のスライスを返す。
func (s *Service) ListByStudy(ctx context.Context, studyID string) ([]json.RawMessage, error) {
	entries, err := s.resultRepo.ListByStudyID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("結果一覧の取得に失敗しました: %w", err)
	}

	payloads := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, json.RawMessage(entry.Data))
	}
	return payloads, nil
}

// ListFromLatest は最も新しく作成されたスタディの全結果を返す。
// スタディが1件もない場合はnilスライスを返す（JSONではnullになる）。
func (s *Service) ListFromLatest(ctx context.Context) ([]json.RawMessage, error) {
	latest, err := s.studyRepo.FindLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("最新スタディの取得に失敗しました: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	return s.ListByStudy(ctx, latest.ID)
}
