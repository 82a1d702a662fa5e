package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// distFields は分布5値のカラム名サフィックス。カラム定義順に一致させる。
var distFields = []string{"mean", "std_deviation", "skew_shape", "min", "max"}

// reactionKinds はリアクション種別のカラム名要素。カラム定義順に一致させる。
var reactionKinds = []string{"like", "dislike", "share", "flag"}

// distColumns は分布5値のカラム名を返す（例: follower_like_mean, ..., follower_like_max）。
func distColumns(prefix string) []string {
	cols := make([]string, 0, len(distFields))
	for _, f := range distFields {
		cols = append(cols, prefix+"_"+f)
	}
	return cols
}

// distScanArgs は分布5値のスキャン先ポインタを返す。distColumnsと同順。
func distScanArgs(d *model.Distribution) []any {
	return []any{&d.Mean, &d.StdDeviation, &d.SkewShape, &d.Min, &d.Max}
}

// effectsByKind はReactionEffectsの各分布をreactionKinds順で返す。
func effectsByKind(e *model.ReactionEffects) []*model.Distribution {
	return []*model.Distribution{&e.Like, &e.Dislike, &e.Share, &e.Flag}
}

// postSelectColumns は投稿の全カラム名を定義順に返す。
func postSelectColumns() []string {
	cols := []string{"id", "study_id", "headline", "content", "is_true"}
	for _, group := range []string{"follower", "credibility", "reaction"} {
		for _, kind := range reactionKinds {
			cols = append(cols, distColumns(group+"_"+kind)...)
		}
	}
	return append(cols, "created_at")
}

// postScanArgs は投稿の全カラムのスキャン先ポインタを返す。postSelectColumnsと同順。
func postScanArgs(p *model.Post) []any {
	args := []any{&p.ID, &p.StudyID, &p.Headline, &p.Content, &p.IsTrue}
	for _, effects := range []*model.ReactionEffects{&p.FollowerChange, &p.CredibilityChange, &p.ReactionCount} {
		for _, d := range effectsByKind(effects) {
			args = append(args, distScanArgs(d)...)
		}
	}
	return append(args, &p.CreatedAt)
}

// postInsertFields は投稿のINSERT用カラム名と値を返す。
// follower_dislike_minは列に含めず、行デフォルトに任せる。
func postInsertFields(p *model.Post) ([]string, []any) {
	cols := []string{"id", "study_id", "headline", "content", "is_true"}
	args := []any{p.ID, p.StudyID, p.Headline, p.Content, p.IsTrue}

	groups := []struct {
		prefix  string
		effects *model.ReactionEffects
	}{
		{"follower", &p.FollowerChange},
		{"credibility", &p.CredibilityChange},
		{"reaction", &p.ReactionCount},
	}
	for _, g := range groups {
		for i, d := range effectsByKind(g.effects) {
			prefix := g.prefix + "_" + reactionKinds[i]
			cols = append(cols, prefix+"_mean", prefix+"_std_deviation", prefix+"_skew_shape")
			args = append(args, d.Mean, d.StdDeviation, d.SkewShape)
			if !(g.prefix == "follower" && reactionKinds[i] == "dislike") {
				cols = append(cols, prefix+"_min")
				args = append(args, d.Min)
			}
			cols = append(cols, prefix+"_max")
			args = append(args, d.Max)
		}
	}

	cols = append(cols, "created_at")
	args = append(args, p.CreatedAt)
	return cols, args
}

// ListByStudyID はスタディの全投稿を作成日時昇順・ID昇順に返す。
func (r *PostgresPostRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.Post, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM posts WHERE study_id = $1 ORDER BY created_at ASC, id ASC`,
		strings.Join(postSelectColumns(), ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, studyID)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(postScanArgs(post)...); err != nil {
			return nil, fmt.Errorf("投稿一覧の読み取りに失敗しました: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
