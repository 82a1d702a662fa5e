package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresParticipantRepo はPostgreSQLを使用した参加者リポジトリ。
type PostgresParticipantRepo struct {
	db *sql.DB
}

// NewPostgresParticipantRepo はPostgresParticipantRepoを生成する。
func NewPostgresParticipantRepo(db *sql.DB) *PostgresParticipantRepo {
	return &PostgresParticipantRepo{db: db}
}

// Create は参加者を作成する。
func (r *PostgresParticipantRepo) Create(ctx context.Context, participant *model.Participant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO participants (id, ms_id, session_id, username, nb_followers, credibility_score,
		                           game_start_time, game_finish_time, study_id, avatar_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		participant.ID, participant.MSID, participant.SessionID, participant.Username,
		participant.NbFollowers, participant.CredibilityScore,
		participant.GameStartTime, participant.GameFinishTime,
		participant.StudyID, nullString(participant.AvatarID), participant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("参加者の挿入に失敗しました: %w", err)
	}
	return nil
}

// ListByStudyID はスタディの参加者一覧を作成日時昇順に返す。
func (r *PostgresParticipantRepo) ListByStudyID(ctx context.Context, studyID string) ([]*model.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ms_id, session_id, username, nb_followers, credibility_score,
		        game_start_time, game_finish_time, study_id, avatar_id, created_at
		 FROM participants
		 WHERE study_id = $1
		 ORDER BY created_at ASC, id ASC`,
		studyID,
	)
	if err != nil {
		return nil, fmt.Errorf("参加者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var participants []*model.Participant
	for rows.Next() {
		participant := &model.Participant{}
		var avatarID sql.NullString

		if err := rows.Scan(
			&participant.ID, &participant.MSID, &participant.SessionID, &participant.Username,
			&participant.NbFollowers, &participant.CredibilityScore,
			&participant.GameStartTime, &participant.GameFinishTime,
			&participant.StudyID, &avatarID, &participant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("参加者一覧の読み取りに失敗しました: %w", err)
		}

		participant.AvatarID = nullStringValue(avatarID)
		participants = append(participants, participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("参加者一覧の走査に失敗しました: %w", err)
	}

	return participants, nil
}

// CountFinishedByStudyID はゲームを完了した参加者数を返す。
func (r *PostgresParticipantRepo) CountFinishedByStudyID(ctx context.Context, studyID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM participants WHERE study_id = $1 AND game_finish_time IS NOT NULL`,
		studyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("完了参加者数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ ParticipantRepository = (*PostgresParticipantRepo)(nil)
