package model

import "time"

// Source は合成されたコンテンツ発信者（シミュレートされたSNSアカウント）を表す。
type Source struct {
	ID                 string
	StudyID            string
	Name               string
	FileName           string // レガシークライアントのソースID。空文字列を許容する。
	MaxPosts           int    // -1 は無制限を表す番兵値。
	TruePostPercentage int
	AvatarID           string // 空文字列はアバターなしを表す。
	StyleID            string

	// Followers/Credibility はランタイムの現在値。分布とは独立したシード値。
	Followers       int
	FollowersDist   Distribution
	Credibility     int
	CredibilityDist Distribution

	CreatedAt time.Time

	// フェッチ時にJOINで展開される所有オブジェクト。
	Avatar *Avatar
	Style  *SourceStyle
}

// Avatar はソースのアバター種別を表す。Sourceと1:1で所有される。
type Avatar struct {
	ID   string
	Type string
}

// SourceStyle はソースの表示スタイルを表す。Sourceと1:1で所有される。
type SourceStyle struct {
	ID              string
	BackgroundColor string
}
