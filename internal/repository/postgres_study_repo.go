package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresStudyRepo はPostgreSQLを使用したスタディリポジトリ。
type PostgresStudyRepo struct {
	db *sql.DB
}

// NewPostgresStudyRepo はPostgresStudyRepoを生成する。
func NewPostgresStudyRepo(db *sql.DB) *PostgresStudyRepo {
	return &PostgresStudyRepo{db: db}
}

// InsertStudy はスタディ1件分の全行を単一トランザクションで挿入する。
// FK依存の順（設定グループ → スタディ → アバター/スタイル → ソース → 投稿 → コメント）に
// 挿入し、途中で失敗した場合は全行をロールバックする。
func (r *PostgresStudyRepo) InsertStudy(ctx context.Context, rows *StudyRows) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	b := rows.Basic
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO study_basic_settings (id, name, description, prompt, length,
		                                   require_comments, require_reactions, require_identification)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Name, b.Description, b.Prompt, b.Length,
		b.RequireComments, b.RequireReactions, b.RequireIdentification,
	); err != nil {
		return fmt.Errorf("基本設定の挿入に失敗しました: %w", err)
	}

	a := rows.Advanced
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO study_advanced_settings (id, minimum_comment_length, prompt_delay_seconds,
		                                      react_delay_seconds, gen_completion_code,
		                                      completion_code_digits, gen_random_default_avatars)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.MinimumCommentLength, a.PromptDelaySeconds,
		a.ReactDelaySeconds, a.GenCompletionCode,
		a.CompletionCodeDigits, a.GenRandomDefaultAvatars,
	); err != nil {
		return fmt.Errorf("詳細設定の挿入に失敗しました: %w", err)
	}

	u := rows.UI
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO study_ui_settings (id, display_posts_in_feed, display_followers,
		                                display_credibility, display_progress,
		                                display_number_of_reactions, allow_multiple_reactions,
		                                comment_enable_like, comment_enable_dislike,
		                                post_enable_like, post_enable_dislike,
		                                post_enable_share, post_enable_flag, post_enable_skip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID, u.DisplayPostsInFeed, u.DisplayFollowers,
		u.DisplayCredibility, u.DisplayProgress,
		u.DisplayNumberOfReactions, u.AllowMultipleReactions,
		u.CommentEnableLike, u.CommentEnableDislike,
		u.PostEnableLike, u.PostEnableDislike,
		u.PostEnableShare, u.PostEnableFlag, u.PostEnableSkip,
	); err != nil {
		return fmt.Errorf("UI設定の挿入に失敗しました: %w", err)
	}

	p := rows.Pages
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO study_pages_settings (id, pre_intro, pre_intro_delay_seconds,
		                                   rules, rules_delay_seconds,
		                                   post_intro, post_intro_delay_seconds, debrief)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.PreIntro, p.PreIntroDelaySeconds,
		p.Rules, p.RulesDelaySeconds,
		p.PostIntro, p.PostIntroDelaySeconds, p.Debrief,
	); err != nil {
		return fmt.Errorf("ページ設定の挿入に失敗しました: %w", err)
	}

	m := rows.Selection
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO post_selection_methods (id, type, linear_slope, linear_intercept)
		 VALUES ($1, $2, $3, $4)`,
		m.ID, m.Type, m.LinearSlope, m.LinearIntercept,
	); err != nil {
		return fmt.Errorf("投稿選択方式の挿入に失敗しました: %w", err)
	}

	s := rows.Study
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO studies (id, enabled, created_by_id, basic_settings_id, advanced_settings_id,
		                      ui_settings_id, pages_settings_id, selection_method_id,
		                      last_modified_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.Enabled, nullString(s.CreatedByID), s.BasicSettingsID, s.AdvancedSettingsID,
		s.UISettingsID, s.PagesSettingsID, s.SelectionMethodID,
		s.LastModifiedTime, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("スタディの挿入に失敗しました: %w", err)
	}

	for _, avatar := range rows.Avatars {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO avatars (id, type) VALUES ($1, $2)`,
			avatar.ID, avatar.Type,
		); err != nil {
			return fmt.Errorf("アバターの挿入に失敗しました: %w", err)
		}
	}

	for _, style := range rows.Styles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO source_styles (id, background_color) VALUES ($1, $2)`,
			style.ID, style.BackgroundColor,
		); err != nil {
			return fmt.Errorf("ソーススタイルの挿入に失敗しました: %w", err)
		}
	}

	for _, source := range rows.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (id, study_id, name, file_name, max_posts, true_post_percentage,
			                      avatar_id, style_id,
			                      followers, followers_mean, followers_std_deviation,
			                      followers_skew_shape, followers_min, followers_max,
			                      credibility, credibility_mean, credibility_std_deviation,
			                      credibility_skew_shape, credibility_min, credibility_max,
			                      created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
			source.ID, source.StudyID, source.Name, source.FileName, source.MaxPosts, source.TruePostPercentage,
			nullString(source.AvatarID), source.StyleID,
			source.Followers, source.FollowersDist.Mean, source.FollowersDist.StdDeviation,
			source.FollowersDist.SkewShape, source.FollowersDist.Min, source.FollowersDist.Max,
			source.Credibility, source.CredibilityDist.Mean, source.CredibilityDist.StdDeviation,
			source.CredibilityDist.SkewShape, source.CredibilityDist.Min, source.CredibilityDist.Max,
			source.CreatedAt,
		); err != nil {
			return fmt.Errorf("ソースの挿入に失敗しました: %w", err)
		}
	}

	for _, post := range rows.Posts {
		cols, args := postInsertFields(post)
		query := fmt.Sprintf(`INSERT INTO posts (%s) VALUES (%s)`,
			strings.Join(cols, ", "), placeholders(len(args)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("投稿の挿入に失敗しました: %w", err)
		}
	}

	for _, comment := range rows.Comments {
		cols, args := commentInsertFields(comment)
		query := fmt.Sprintf(`INSERT INTO comments (%s) VALUES (%s)`,
			strings.Join(cols, ", "), placeholders(len(args)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("コメントの挿入に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// studySelectQuery はスタディ1件を設定グループと作成者名込みで取得するSELECT句。
const studySelectQuery = `
	SELECT s.id, s.enabled, s.created_by_id,
	       s.basic_settings_id, s.advanced_settings_id, s.ui_settings_id,
	       s.pages_settings_id, s.selection_method_id,
	       s.last_modified_time, s.created_at,
	       b.name, b.description, b.prompt, b.length,
	       b.require_comments, b.require_reactions, b.require_identification,
	       a.minimum_comment_length, a.prompt_delay_seconds, a.react_delay_seconds,
	       a.gen_completion_code, a.completion_code_digits, a.gen_random_default_avatars,
	       u.display_posts_in_feed, u.display_followers, u.display_credibility,
	       u.display_progress, u.display_number_of_reactions, u.allow_multiple_reactions,
	       u.comment_enable_like, u.comment_enable_dislike,
	       u.post_enable_like, u.post_enable_dislike, u.post_enable_share,
	       u.post_enable_flag, u.post_enable_skip,
	       p.pre_intro, p.pre_intro_delay_seconds, p.rules, p.rules_delay_seconds,
	       p.post_intro, p.post_intro_delay_seconds, p.debrief,
	       m.type, m.linear_slope, m.linear_intercept,
	       au.username
	FROM studies s
	JOIN study_basic_settings b ON b.id = s.basic_settings_id
	JOIN study_advanced_settings a ON a.id = s.advanced_settings_id
	JOIN study_ui_settings u ON u.id = s.ui_settings_id
	JOIN study_pages_settings p ON p.id = s.pages_settings_id
	JOIN post_selection_methods m ON m.id = s.selection_method_id
	LEFT JOIN admin_users au ON au.id = s.created_by_id`

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStudy はstudySelectQueryの1行をStudyに読み取る。
func scanStudy(row rowScanner) (*model.Study, error) {
	study := &model.Study{
		Basic:     &model.BasicSettings{},
		Advanced:  &model.AdvancedSettings{},
		UI:        &model.UISettings{},
		Pages:     &model.PagesSettings{},
		Selection: &model.PostSelectionMethod{},
	}
	var createdByID, authorName sql.NullString

	err := row.Scan(
		&study.ID, &study.Enabled, &createdByID,
		&study.BasicSettingsID, &study.AdvancedSettingsID, &study.UISettingsID,
		&study.PagesSettingsID, &study.SelectionMethodID,
		&study.LastModifiedTime, &study.CreatedAt,
		&study.Basic.Name, &study.Basic.Description, &study.Basic.Prompt, &study.Basic.Length,
		&study.Basic.RequireComments, &study.Basic.RequireReactions, &study.Basic.RequireIdentification,
		&study.Advanced.MinimumCommentLength, &study.Advanced.PromptDelaySeconds, &study.Advanced.ReactDelaySeconds,
		&study.Advanced.GenCompletionCode, &study.Advanced.CompletionCodeDigits, &study.Advanced.GenRandomDefaultAvatars,
		&study.UI.DisplayPostsInFeed, &study.UI.DisplayFollowers, &study.UI.DisplayCredibility,
		&study.UI.DisplayProgress, &study.UI.DisplayNumberOfReactions, &study.UI.AllowMultipleReactions,
		&study.UI.CommentEnableLike, &study.UI.CommentEnableDislike,
		&study.UI.PostEnableLike, &study.UI.PostEnableDislike, &study.UI.PostEnableShare,
		&study.UI.PostEnableFlag, &study.UI.PostEnableSkip,
		&study.Pages.PreIntro, &study.Pages.PreIntroDelaySeconds, &study.Pages.Rules, &study.Pages.RulesDelaySeconds,
		&study.Pages.PostIntro, &study.Pages.PostIntroDelaySeconds, &study.Pages.Debrief,
		&study.Selection.Type, &study.Selection.LinearSlope, &study.Selection.LinearIntercept,
		&authorName,
	)
	if err != nil {
		return nil, err
	}

	study.CreatedByID = nullStringValue(createdByID)
	study.Basic.ID = study.BasicSettingsID
	study.Advanced.ID = study.AdvancedSettingsID
	study.UI.ID = study.UISettingsID
	study.Pages.ID = study.PagesSettingsID
	study.Selection.ID = study.SelectionMethodID
	study.AuthorName = nullStringValue(authorName)

	return study, nil
}

// FindByID は指定IDのスタディを設定グループと作成者名込みで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresStudyRepo) FindByID(ctx context.Context, id string) (*model.Study, error) {
	row := r.db.QueryRowContext(ctx, studySelectQuery+` WHERE s.id = $1`, id)

	study, err := scanStudy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スタディの取得に失敗しました: %w", err)
	}

	return study, nil
}

// FindLatest は最も新しく作成されたスタディを取得する。
// スタディが1件もない場合はnilを返す。
func (r *PostgresStudyRepo) FindLatest(ctx context.Context) (*model.Study, error) {
	row := r.db.QueryRowContext(ctx, studySelectQuery+` ORDER BY s.created_at DESC, s.id DESC LIMIT 1`)

	study, err := scanStudy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("最新スタディの取得に失敗しました: %w", err)
	}

	return study, nil
}

// ListAll は全スタディを設定グループと作成者名込みで作成日時降順に返す。
func (r *PostgresStudyRepo) ListAll(ctx context.Context) ([]*model.Study, error) {
	rows, err := r.db.QueryContext(ctx, studySelectQuery+` ORDER BY s.created_at DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("スタディ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var studies []*model.Study
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("スタディ一覧の読み取りに失敗しました: %w", err)
		}
		studies = append(studies, study)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スタディ一覧の走査に失敗しました: %w", err)
	}

	return studies, nil
}

// UpdateEnabled はスタディの有効フラグと最終更新時刻を更新する。
// スタディが存在しない場合はfalseを返す。
func (r *PostgresStudyRepo) UpdateEnabled(ctx context.Context, id string, enabled bool, lastModifiedTime int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE studies SET enabled = $2, last_modified_time = $3 WHERE id = $1`,
		id, enabled, lastModifiedTime,
	)
	if err != nil {
		return false, fmt.Errorf("スタディの有効フラグ更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新行数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// Delete はスタディとその所有行を単一トランザクションで削除する。
// comments → posts → sources → study の順に削除する。
// 設定グループの行はスタディ本体の削除後も残す（参照する行がないだけで無害）。
// スタディが存在しない場合はfalseを返す。
func (r *PostgresStudyRepo) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments c USING posts p WHERE c.post_id = p.id AND p.study_id = $1`,
		id,
	); err != nil {
		return false, fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE study_id = $1`, id); err != nil {
		return false, fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE study_id = $1`, id); err != nil {
		return false, fmt.Errorf("ソースの削除に失敗しました: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("スタディの削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return affected > 0, nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// placeholders は$1..$nのプレースホルダ列を生成する。
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i)
	}
	return b.String()
}

// compile-time interface check
var _ StudyRepository = (*PostgresStudyRepo)(nil)
