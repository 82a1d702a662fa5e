// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// StudyRows はスタディ1件分のリレーショナル行の束を表す。
// ハイドレーションの出力であり、InsertStudyはこの束を
// 依存順に単一トランザクションで挿入する。
type StudyRows struct {
	Study     *model.Study
	Basic     *model.BasicSettings
	Advanced  *model.AdvancedSettings
	UI        *model.UISettings
	Pages     *model.PagesSettings
	Selection *model.PostSelectionMethod
	Avatars   []*model.Avatar
	Styles    []*model.SourceStyle
	Sources   []*model.Source
	Posts     []*model.Post
	Comments  []*model.Comment
}

// StudyRepository はスタディデータの永続化インターフェース。
type StudyRepository interface {
	// InsertStudy はスタディ1件分の全行を単一トランザクションで挿入する。
	// 途中で失敗した場合は全行がロールバックされる。
	InsertStudy(ctx context.Context, rows *StudyRows) error

	// FindByID は指定IDのスタディを設定グループと作成者名込みで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Study, error)

	// FindLatest は最も新しく作成されたスタディを取得する。
	// スタディが1件もない場合はnilを返す。
	FindLatest(ctx context.Context) (*model.Study, error)

	// ListAll は全スタディを基本設定込みで作成日時降順に返す。
	ListAll(ctx context.Context) ([]*model.Study, error)

	// UpdateEnabled はスタディの有効フラグと最終更新時刻を更新する。
	// スタディが存在しない場合はfalseを返す。
	UpdateEnabled(ctx context.Context, id string, enabled bool, lastModifiedTime int64) (bool, error)

	// Delete はスタディとその所有行を単一トランザクションで削除する。
	// comments → posts → sources → study の順に削除する。
	// スタディが存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// SourceRepository はソースデータの永続化インターフェース。
type SourceRepository interface {
	// ListByStudyID はスタディの全ソースをアバターとスタイル込みで
	// 作成日時昇順・ID昇順に返す。
	ListByStudyID(ctx context.Context, studyID string) ([]*model.Source, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// ListByStudyID はスタディの全投稿を作成日時昇順・ID昇順に返す。
	ListByStudyID(ctx context.Context, studyID string) ([]*model.Post, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// ListByStudyID はスタディの全コメントを投稿経由のJOINで取得し、
	// 作成日時昇順・ID昇順に返す。
	ListByStudyID(ctx context.Context, studyID string) ([]*model.Comment, error)
}

// ResultRepository は結果データの永続化インターフェース。
type ResultRepository interface {
	// Insert は結果を1件挿入する。
	Insert(ctx context.Context, result *model.StudyResult) error

	// ListByStudyID はスタディの全結果を作成日時昇順に返す。
	ListByStudyID(ctx context.Context, studyID string) ([]*model.StudyResult, error)
}

// UserRepository は管理者ユーザーの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AdminUser, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.AdminUser, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.AdminUser) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ParticipantRepository は参加者データの永続化インターフェース。
type ParticipantRepository interface {
	// Create は参加者を作成する。
	Create(ctx context.Context, participant *model.Participant) error

	// ListByStudyID はスタディの参加者一覧を作成日時昇順に返す。
	ListByStudyID(ctx context.Context, studyID string) ([]*model.Participant, error)

	// CountFinishedByStudyID はゲームを完了した参加者数を返す。
	CountFinishedByStudyID(ctx context.Context, studyID string) (int, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
