package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresSourceRepo はPostgreSQLを使用したソースリポジトリ。
type PostgresSourceRepo struct {
	db *sql.DB
}

// NewPostgresSourceRepo はPostgresSourceRepoを生成する。
func NewPostgresSourceRepo(db *sql.DB) *PostgresSourceRepo {
	return &PostgresSourceRepo{db: db}
}

// ListByStudyID はスタディの全ソースをアバターとスタイル込みで
// 作成日時昇順・ID昇順に返す。
func (r *PostgresSourceRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.Source, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.study_id, s.name, s.file_name, s.max_posts, s.true_post_percentage,
		        s.avatar_id, s.style_id,
		        s.followers, s.followers_mean, s.followers_std_deviation,
		        s.followers_skew_shape, s.followers_min, s.followers_max,
		        s.credibility, s.credibility_mean, s.credibility_std_deviation,
		        s.credibility_skew_shape, s.credibility_min, s.credibility_max,
		        s.created_at,
		        a.type,
		        st.background_color
		 FROM sources s
		 LEFT JOIN avatars a ON a.id = s.avatar_id
		 JOIN source_styles st ON st.id = s.style_id
		 WHERE s.study_id = $1
		 ORDER BY s.created_at ASC, s.id ASC`,
		studyID,
	)
	if err != nil {
		return nil, fmt.Errorf("ソース一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		source := &model.Source{Style: &model.SourceStyle{}}
		var avatarID, avatarType sql.NullString

		if err := rows.Scan(
			&source.ID, &source.StudyID, &source.Name, &source.FileName, &source.MaxPosts, &source.TruePostPercentage,
			&avatarID, &source.StyleID,
			&source.Followers, &source.FollowersDist.Mean, &source.FollowersDist.StdDeviation,
			&source.FollowersDist.SkewShape, &source.FollowersDist.Min, &source.FollowersDist.Max,
			&source.Credibility, &source.CredibilityDist.Mean, &source.CredibilityDist.StdDeviation,
			&source.CredibilityDist.SkewShape, &source.CredibilityDist.Min, &source.CredibilityDist.Max,
			&source.CreatedAt,
			&avatarType,
			&source.Style.BackgroundColor,
		); err != nil {
			return nil, fmt.Errorf("ソース一覧の読み取りに失敗しました: %w", err)
		}

		source.AvatarID = nullStringValue(avatarID)
		source.Style.ID = source.StyleID
		if source.AvatarID != "" {
			source.Avatar = &model.Avatar{ID: source.AvatarID, Type: nullStringValue(avatarType)}
		}

		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ソース一覧の走査に失敗しました: %w", err)
	}

	return sources, nil
}

// compile-time interface check
var _ SourceRepository = (*PostgresSourceRepo)(nil)
