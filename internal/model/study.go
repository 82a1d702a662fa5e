// Package model はドメインモデルを定義する。
package model

import "time"

// 永続化される主キーはUUIDv4のテキスト形式（36文字）。
const PrimaryKeySize = 36

// Study は調査（スタディ）の集約ルートを表す。
// 5つの設定グループは必須の所有オブジェクトであり、
// スタディと同一トランザクションで生成・挿入される。
type Study struct {
	ID                string
	Enabled           bool
	CreatedByID       string // 作成者AdminUserのID。空文字列は作成者なしを表す。
	BasicSettingsID   string
	AdvancedSettingsID string
	UISettingsID      string
	PagesSettingsID   string
	SelectionMethodID string
	LastModifiedTime  int64 // UNIX秒。enabled更新時にのみ書き換わる。
	CreatedAt         time.Time

	// フェッチ時にJOINで展開される所有オブジェクト。
	Basic      *BasicSettings
	Advanced   *AdvancedSettings
	UI         *UISettings
	Pages      *PagesSettings
	Selection  *PostSelectionMethod
	AuthorName string // JOINで解決した作成者名。作成者が存在しない場合は空。
}

// BasicSettings はスタディの基本設定を表す。
type BasicSettings struct {
	ID                    string
	Name                  string
	Description           string
	Prompt                string
	Length                int
	RequireComments       string
	RequireReactions      bool
	RequireIdentification bool
}

// AdvancedSettings はスタディの詳細設定を表す。
type AdvancedSettings struct {
	ID                      string
	MinimumCommentLength    int
	PromptDelaySeconds      float64
	ReactDelaySeconds       float64
	GenCompletionCode       bool
	CompletionCodeDigits    int
	GenRandomDefaultAvatars bool
}

// UISettings は参加者クライアントの表示・リアクション設定を表す。
type UISettings struct {
	ID                       string
	DisplayPostsInFeed       bool
	DisplayFollowers         bool
	DisplayCredibility       bool
	DisplayProgress          bool
	DisplayNumberOfReactions bool
	AllowMultipleReactions   bool

	CommentEnableLike    bool
	CommentEnableDislike bool

	PostEnableLike    bool
	PostEnableDislike bool
	PostEnableShare   bool
	PostEnableFlag    bool
	PostEnableSkip    bool
}

// PagesSettings はスタディの前後に表示されるページ設定を表す。
type PagesSettings struct {
	ID                    string
	PreIntro              string
	PreIntroDelaySeconds  int
	Rules                 string
	RulesDelaySeconds     float64
	PostIntro             string
	PostIntroDelaySeconds float64
	Debrief               string
}

// PostSelectionMethod は投稿の選択方式を表す。
type PostSelectionMethod struct {
	ID              string
	Type            string
	LinearSlope     float64
	LinearIntercept float64
}
