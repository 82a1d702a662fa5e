package model

import "time"

// Distribution は統計分布の5つ組 {mean, stdDeviation, skewShape, min, max} を表す。
// フォロワー・信頼度・リアクション数の各効果に共通して使われる。
type Distribution struct {
	Mean         float64
	StdDeviation float64
	SkewShape    int
	Min          int
	Max          int
}

// ReactionEffects はリアクション種別（like/dislike/share/flag）ごとの分布の組を表す。
type ReactionEffects struct {
	Like    Distribution
	Dislike Distribution
	Share   Distribution
	Flag    Distribution
}

// Post はスタディに属するフィード投稿を表す。
// Contentはレガシーエンコードされた文字列であり、
// 型付きコンテンツは "type=<ext>" の形式で保持される。
type Post struct {
	ID       string
	StudyID  string
	Headline string
	Content  string
	IsTrue   bool

	FollowerChange    ReactionEffects
	CredibilityChange ReactionEffects
	ReactionCount     ReactionEffects

	CreatedAt time.Time
}

// Comment は投稿に属するコメントを表す。
// like/dislikeの分布は常に保持され、flag/shareは
// ドキュメントに存在しない場合ゼロ値の5つ組で埋められる。
type Comment struct {
	ID         string
	PostID     string
	SourceName string
	Message    string

	Like    Distribution
	Dislike Distribution
	Flag    Distribution
	Share   Distribution

	CreatedAt time.Time
}
