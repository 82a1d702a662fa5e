package study

import (
	"context"
	"fmt"
	"sync"

	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/repository"
	"github.com/haddriax/MisinformationGame-API/internal/security"
)

// Service はスタディのアップロード・取得・一覧・削除のフローを統括する。
// アップロード: 検証 → サニタイズ → ハイドレーション → 原子的挿入。
// 取得: フェッチ → 再グルーピング → デハイドレーション。
type Service struct {
	studyRepo       repository.StudyRepository
	sourceRepo      repository.SourceRepository
	postRepo        repository.PostRepository
	commentRepo     repository.CommentRepository
	participantRepo repository.ParticipantRepository
	sanitizer       security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	studyRepo repository.StudyRepository,
	sourceRepo repository.SourceRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	participantRepo repository.ParticipantRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		studyRepo:       studyRepo,
		sourceRepo:      sourceRepo,
		postRepo:        postRepo,
		commentRepo:     commentRepo,
		participantRepo: participantRepo,
		sanitizer:       sanitizer,
	}
}

// Upload はスタディドキュメントを検証・サニタイズし、リレーショナル行に
// 変換して単一トランザクションで挿入する。挿入されたスタディのIDを返す。
// 検証エラー時は何も永続化されない。
func (s *Service) Upload(ctx context.Context, doc *StudyDocument) (string, error) {
	if err := ValidateDocument(doc); err != nil {
		return "", err
	}

	sanitizeDocument(doc, s.sanitizer)

	rows := Hydrate(doc)
	if err := s.studyRepo.InsertStudy(ctx, rows); err != nil {
		return "", fmt.Errorf("スタディの保存に失敗しました: %w", err)
	}

	return rows.Study.ID, nil
}

// Get は指定IDのスタディを取得し、完全なドキュメントに組み立てて返す。
// スタディが存在しない場合はSTUDY_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*StudyDocument, error) {
	found, err := s.studyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("スタディの取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewStudyNotFoundError(id)
	}

	return s.assemble(ctx, found)
}

// List は全スタディを完全なドキュメントの一覧として返す。
// スタディが1件もない場合は空のスライスを返す。
func (s *Service) List(ctx context.Context) ([]*StudyDocument, error) {
	studies, err := s.studyRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("スタディ一覧の取得に失敗しました: %w", err)
	}

	docs := make([]*StudyDocument, 0, len(studies))
	for _, found := range studies {
		doc, err := s.assemble(ctx, found)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// SetEnabled はスタディの有効フラグと最終更新時刻を更新する。
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool, lastModifiedTime int64) error {
	found, err := s.studyRepo.UpdateEnabled(ctx, id, enabled, lastModifiedTime)
	if err != nil {
		return fmt.Errorf("スタディの更新に失敗しました: %w", err)
	}
	if !found {
		return model.NewStudyNotFoundError(id)
	}
	return nil
}

// Delete はスタディとその所有行を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.studyRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("スタディの削除に失敗しました: %w", err)
	}
	if !found {
		return model.NewStudyNotFoundError(id)
	}
	return nil
}

// FinishedParticipantCount はスタディのゲームを完了した参加者数を返す。
// ダッシュボード表示に使われる。スタディが存在しない場合はSTUDY_NOT_FOUNDエラーを返す。
func (s *Service) FinishedParticipantCount(ctx context.Context, id string) (int, error) {
	found, err := s.studyRepo.FindByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("スタディの取得に失敗しました: %w", err)
	}
	if found == nil {
		return 0, model.NewStudyNotFoundError(id)
	}

	count, err := s.participantRepo.CountFinishedByStudyID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("完了参加者数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// assemble はスタディの子エンティティを取得し、ドキュメントに組み立てる。
// 投稿・コメント・ソースの3クエリは互いに独立のため並行に発行し、
// 全て揃ってから再グルーピングとデハイドレーションを行う。
func (s *Service) assemble(ctx context.Context, found *model.Study) (*StudyDocument, error) {
	var (
		wg       sync.WaitGroup
		posts    []*model.Post
		comments []*model.Comment
		sources  []*model.Source

		postsErr    error
		commentsErr error
		sourcesErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		posts, postsErr = s.postRepo.ListByStudyID(ctx, found.ID)
	}()
	go func() {
		defer wg.Done()
		comments, commentsErr = s.commentRepo.ListByStudyID(ctx, found.ID)
	}()
	go func() {
		defer wg.Done()
		sources, sourcesErr = s.sourceRepo.ListByStudyID(ctx, found.ID)
	}()
	wg.Wait()

	if postsErr != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", postsErr)
	}
	if commentsErr != nil {
		return nil, fmt.Errorf("コメントの取得に失敗しました: %w", commentsErr)
	}
	if sourcesErr != nil {
		return nil, fmt.Errorf("ソースの取得に失敗しました: %w", sourcesErr)
	}

	threads, err := Regroup(posts, comments)
	if err != nil {
		return nil, err
	}

	return Dehydrate(found, threads, sources)
}
