package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresResultRepo はPostgreSQLを使用した結果リポジトリ。
type PostgresResultRepo struct {
	db *sql.DB
}

// NewPostgresResultRepo はPostgresResultRepoを生成する。
func NewPostgresResultRepo(db *sql.DB) *PostgresResultRepo {
	return &PostgresResultRepo{db: db}
}

// Insert は結果を1件挿入する。
func (r *PostgresResultRepo) Insert(ctx context.Context, result *model.StudyResult) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO study_results (id, study_id, study_mod_time, session_id,
		                            start_time, end_time, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, result.StudyID, result.StudyModTime, result.SessionID,
		result.StartTime, result.EndTime, result.Data, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("結果の挿入に失敗しました: %w", err)
	}
	return nil
}

// ListByStudyID はスタディの全結果を作成日時昇順に返す。
func (r *PostgresResultRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.StudyResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, study_id, study_mod_time, session_id, start_time, end_time, data, created_at
		 FROM study_results
		 WHERE study_id = $1
		 ORDER BY created_at ASC, id ASC`,
		studyID,
	)
	if err != nil {
		return nil, fmt.Errorf("結果一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []*model.StudyResult
	for rows.Next() {
		result := &model.StudyResult{}
		if err := rows.Scan(
			&result.ID, &result.StudyID, &result.StudyModTime, &result.SessionID,
			&result.StartTime, &result.EndTime, &result.Data, &result.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("結果一覧の読み取りに失敗しました: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("結果一覧の走査に失敗しました: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ ResultRepository = (*PostgresResultRepo)(nil)
