package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// commentSelectColumns はコメントの全カラム名を定義順に返す。
func commentSelectColumns() []string {
	cols := []string{"id", "post_id", "source_name", "message"}
	for _, kind := range []string{"like", "dislike", "flag", "share"} {
		cols = append(cols, distColumns(kind)...)
	}
	return append(cols, "created_at")
}

// commentScanArgs はコメントの全カラムのスキャン先ポインタを返す。commentSelectColumnsと同順。
func commentScanArgs(c *model.Comment) []any {
	args := []any{&c.ID, &c.PostID, &c.SourceName, &c.Message}
	for _, d := range []*model.Distribution{&c.Like, &c.Dislike, &c.Flag, &c.Share} {
		args = append(args, distScanArgs(d)...)
	}
	return append(args, &c.CreatedAt)
}

// commentInsertFields はコメントのINSERT用カラム名と値を返す。
func commentInsertFields(c *model.Comment) ([]string, []any) {
	cols := []string{"id", "post_id", "source_name", "message"}
	args := []any{c.ID, c.PostID, c.SourceName, c.Message}

	dists := []struct {
		prefix string
		d      *model.Distribution
	}{
		{"like", &c.Like},
		{"dislike", &c.Dislike},
		{"flag", &c.Flag},
		{"share", &c.Share},
	}
	for _, entry := range dists {
		cols = append(cols, distColumns(entry.prefix)...)
		args = append(args, entry.d.Mean, entry.d.StdDeviation, entry.d.SkewShape, entry.d.Min, entry.d.Max)
	}

	cols = append(cols, "created_at")
	args = append(args, c.CreatedAt)
	return cols, args
}

// ListByStudyID はスタディの全コメントを投稿経由のJOINで取得し、
// 作成日時昇順・ID昇順に返す。
func (r *PostgresCommentRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.Comment, error) {
	selectCols := make([]string, 0, 25)
	for _, col := range commentSelectColumns() {
		selectCols = append(selectCols, "c."+col)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM comments c
		 JOIN posts p ON p.id = c.post_id
		 WHERE p.study_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		strings.Join(selectCols, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, studyID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment := &model.Comment{}
		if err := rows.Scan(commentScanArgs(comment)...); err != nil {
			return nil, fmt.Errorf("コメント一覧の読み取りに失敗しました: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コメント一覧の走査に失敗しました: %w", err)
	}

	return comments, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
