package model

import "time"

// AdminUser はスタディを作成・管理する管理者アカウントを表す。
type AdminUser struct {
	ID           string
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string // bcryptハッシュ。
	Active       bool
	CreatedAt    time.Time
}

// Session は管理者のログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Participant はスタディを実行する参加者を表す。
type Participant struct {
	ID               string
	MSID             string
	SessionID        string
	Username         string
	NbFollowers      int
	CredibilityScore int
	GameStartTime    *time.Time
	GameFinishTime   *time.Time
	StudyID          string
	AvatarID         string
	CreatedAt        time.Time
}
