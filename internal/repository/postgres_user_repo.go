package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用した管理者ユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.AdminUser, error) {
	user := &model.AdminUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, email, password_hash, active, created_at
		 FROM admin_users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username,
		&user.Email, &user.PasswordHash, &user.Active, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	user := &model.AdminUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, email, password_hash, active, created_at
		 FROM admin_users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username,
		&user.Email, &user.PasswordHash, &user.Active, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.AdminUser) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, first_name, last_name, username, email, password_hash, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.FirstName, user.LastName, user.Username,
		user.Email, user.PasswordHash, user.Active, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
