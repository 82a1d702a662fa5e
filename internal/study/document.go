// Package study はスタディのトランスコーディングエンジンを提供する。
// JSONドキュメントとリレーショナル行の双方向変換（ハイドレーション/デハイドレーション）と、
// フラットに取得した行の再グルーピングがこのパッケージの中核となる。
package study

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StudyDocument はAPI境界でやり取りされるスタディJSONドキュメントを表す。
// フィールド名はレガシークライアントと互換のcamelCaseを用いる。
// sources/postsは入力では省略可能（省略時は空のスタディ）だが、
// 出力では常に空配列以上が埋められる。
type StudyDocument struct {
	ID                        string                   `json:"id,omitempty"`
	Version                   *int                     `json:"version" validate:"required"`
	AuthorID                  string                   `json:"authorID" validate:"required"`
	AuthorName                string                   `json:"authorName" validate:"required"`
	LastModifiedTime          *int64                   `json:"lastModifiedTime" validate:"required"`
	Enabled                   *bool                    `json:"enabled" validate:"required"`
	BasicSettings             *BasicSettingsDocument   `json:"basicSettings" validate:"required"`
	UISettings                *UISettingsDocument      `json:"uiSettings" validate:"required"`
	AdvancedSettings          *AdvancedSettingsDocument `json:"advancedSettings" validate:"required"`
	PagesSettings             *PagesSettingsDocument   `json:"pagesSettings" validate:"required"`
	SourcePostSelectionMethod *SelectionMethodDocument `json:"sourcePostSelectionMethod" validate:"required"`
	Sources                   []*SourceDocument        `json:"sources" validate:"omitempty,dive,required"`
	Posts                     []*PostDocument          `json:"posts" validate:"omitempty,dive,required"`
}

// BasicSettingsDocument はスタディの基本設定を表す。
type BasicSettingsDocument struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Prompt                string `json:"prompt"`
	Length                int    `json:"length"`
	RequireComments       string `json:"requireComments"`
	RequireReactions      bool   `json:"requireReactions"`
	RequireIdentification bool   `json:"requireIdentification"`
}

// AdvancedSettingsDocument はスタディの詳細設定を表す。
type AdvancedSettingsDocument struct {
	MinimumCommentLength    int     `json:"minimumCommentLength"`
	PromptDelaySeconds      float64 `json:"promptDelaySeconds"`
	ReactDelaySeconds       float64 `json:"reactDelaySeconds"`
	GenCompletionCode       bool    `json:"genCompletionCode"`
	CompletionCodeDigits    int     `json:"completionCodeDigits"`
	GenRandomDefaultAvatars bool    `json:"genRandomDefaultAvatars"`
}

// PagesSettingsDocument はスタディ前後に表示されるページ設定を表す。
type PagesSettingsDocument struct {
	PreIntro              string `json:"preIntro"`
	PreIntroDelaySeconds  int    `json:"preIntroDelaySeconds"`
	Rules                 string `json:"rules"`
	RulesDelaySeconds     int    `json:"rulesDelaySeconds"`
	PostIntro             string `json:"postIntro"`
	PostIntroDelaySeconds int    `json:"postIntroDelaySeconds"`
	Debrief               string `json:"debrief"`
}

// UISettingsDocument は参加者クライアントの表示・リアクション設定を表す。
type UISettingsDocument struct {
	DisplayPostsInFeed       bool                             `json:"displayPostsInFeed"`
	DisplayFollowers         bool                             `json:"displayFollowers"`
	DisplayCredibility       bool                             `json:"displayCredibility"`
	DisplayProgress          bool                             `json:"displayProgress"`
	DisplayNumberOfReactions bool                             `json:"displayNumberOfReactions"`
	AllowMultipleReactions   bool                             `json:"allowMultipleReactions"`
	PostEnabledReactions     *PostEnabledReactionsDocument    `json:"postEnabledReactions" validate:"required"`
	CommentEnabledReactions  *CommentEnabledReactionsDocument `json:"commentEnabledReactions" validate:"required"`
}

// PostEnabledReactionsDocument は投稿に対して有効なリアクション種別を表す。
type PostEnabledReactionsDocument struct {
	Like    bool `json:"like"`
	Dislike bool `json:"dislike"`
	Share   bool `json:"share"`
	Flag    bool `json:"flag"`
	Skip    bool `json:"skip"`
}

// CommentEnabledReactionsDocument はコメントに対して有効なリアクション種別を表す。
type CommentEnabledReactionsDocument struct {
	Like    bool `json:"like"`
	Dislike bool `json:"dislike"`
}

// SelectionMethodDocument は投稿の選択方式を表す。
type SelectionMethodDocument struct {
	Type               string                      `json:"type" validate:"required"`
	LinearRelationship *LinearRelationshipDocument `json:"linearRelationship" validate:"required"`
}

// LinearRelationshipDocument は選択方式の線形関係（傾きと切片）を表す。
type LinearRelationshipDocument struct {
	Slope     float64 `json:"slope"`
	Intercept int     `json:"intercept"`
}

// SourceDocument はスタディのソース（合成されたコンテンツ発信者）を表す。
// linked_study_idとfile_nameのみレガシー互換のsnake_caseキーを持つ。
type SourceDocument struct {
	ID                 string                `json:"id" validate:"required"`
	LinkedStudyID      string                `json:"linked_study_id,omitempty"`
	FileName           string                `json:"file_name,omitempty"`
	Name               string                `json:"name" validate:"required"`
	Avatar             *AvatarDocument       `json:"avatar"`
	Style              *StyleDocument        `json:"style"`
	MaxPosts           *int                  `json:"maxPosts"`
	Followers          *DistributionDocument `json:"followers" validate:"required"`
	Credibility        *DistributionDocument `json:"credibility" validate:"required"`
	TruePostPercentage int                   `json:"truePostPercentage"`
}

// AvatarDocument はソースのアバター種別を表す。
type AvatarDocument struct {
	Type string `json:"type"`
}

// StyleDocument はソースの表示スタイルを表す。
type StyleDocument struct {
	BackgroundColor string `json:"backgroundColor"`
}

// DistributionDocument はソースのフォロワー・信頼度分布を表す。
// ReactionDocumentと異なりデフォルト値の補完は行わない。
type DistributionDocument struct {
	Mean         int `json:"mean"`
	StdDeviation int `json:"stdDeviation"`
	SkewShape    int `json:"skewShape"`
	Min          int `json:"min"`
	Max          int `json:"max"`
}

// PostDocument はスタディのフィード投稿を表す。
type PostDocument struct {
	ID                   string                 `json:"id" validate:"required"`
	Headline             string                 `json:"headline"`
	Content              *PostContent           `json:"content,omitempty"`
	IsTrue               *bool                  `json:"isTrue" validate:"required"`
	ChangesToFollowers   *ReactionGroupDocument `json:"changesToFollowers" validate:"required"`
	ChangesToCredibility *ReactionGroupDocument `json:"changesToCredibility" validate:"required"`
	NumberOfReactions    *ReactionGroupDocument `json:"numberOfReactions" validate:"required"`
	Comments             []*CommentDocument     `json:"comments,omitempty" validate:"omitempty,dive,required"`
}

// ReactionGroupDocument はリアクション種別ごとの分布の組を表す。
type ReactionGroupDocument struct {
	Like    *ReactionDocument `json:"like" validate:"required"`
	Dislike *ReactionDocument `json:"dislike" validate:"required"`
	Share   *ReactionDocument `json:"share" validate:"required"`
	Flag    *ReactionDocument `json:"flag" validate:"required"`
}

// CommentDocument は投稿のコメントを表す。
// リアクションはlike/dislikeのみ必須のライトビューで表現される。
type CommentDocument struct {
	SourceName        string                    `json:"sourceName" validate:"required"`
	Message           string                    `json:"message" validate:"required"`
	NumberOfReactions *CommentReactionsDocument `json:"numberOfReactions" validate:"required"`
}

// CommentReactionsDocument はコメントのリアクション分布を表す。
// flag/shareは省略可能であり、省略時はハイドレーションでゼロ値の5つ組になる。
type CommentReactionsDocument struct {
	Like    *ReactionDocument `json:"like" validate:"required"`
	Dislike *ReactionDocument `json:"dislike" validate:"required"`
	Flag    *ReactionDocument `json:"flag,omitempty"`
	Share   *ReactionDocument `json:"share,omitempty"`
}

// ReactionDocumentのスキーマ境界デフォルト値。
// 行レベルでは適用されず、JSONデコード時にのみ補完される。
const (
	defaultReactionMean         = 0.5
	defaultReactionStdDeviation = 0.5
	defaultReactionSkewShape    = 1
	defaultReactionMin          = 0
	defaultReactionMax          = 1000
)

// ReactionDocument は統計分布の5つ組 {mean, stdDeviation, skewShape, min, max} を表す。
// 省略されたフィールドはデコード時にデフォルト値で補完される。
type ReactionDocument struct {
	Mean         float64 `json:"mean"`
	StdDeviation float64 `json:"stdDeviation"`
	SkewShape    int     `json:"skewShape"`
	Min          int     `json:"min"`
	Max          int     `json:"max"`
}

// UnmarshalJSON は省略されたフィールドをデフォルト値で補完してデコードする。
func (r *ReactionDocument) UnmarshalJSON(data []byte) error {
	var raw struct {
		Mean         *float64 `json:"mean"`
		StdDeviation *float64 `json:"stdDeviation"`
		SkewShape    *int     `json:"skewShape"`
		Min          *int     `json:"min"`
		Max          *int     `json:"max"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Mean = defaultReactionMean
	r.StdDeviation = defaultReactionStdDeviation
	r.SkewShape = defaultReactionSkewShape
	r.Min = defaultReactionMin
	r.Max = defaultReactionMax

	if raw.Mean != nil {
		r.Mean = *raw.Mean
	}
	if raw.StdDeviation != nil {
		r.StdDeviation = *raw.StdDeviation
	}
	if raw.SkewShape != nil {
		r.SkewShape = *raw.SkewShape
	}
	if raw.Min != nil {
		r.Min = *raw.Min
	}
	if raw.Max != nil {
		r.Max = *raw.Max
	}

	return nil
}

// PostContent は投稿コンテンツのタグ付きバリアント。
// レガシークライアントは同じフィールドに平文文字列（テキスト投稿）と
// {"type": "<ext>"} オブジェクト（画像投稿）の両方を載せるため、
// デコード時にどちらかへ解決する。
type PostContent struct {
	// Typed がtrueのときValueはファイル拡張子、falseのとき平文テキスト。
	Typed bool
	Value string
}

// PlainContent は平文テキストのコンテンツを生成する。
func PlainContent(text string) *PostContent {
	return &PostContent{Value: text}
}

// TypedContent はファイル拡張子を持つ構造化コンテンツを生成する。
func TypedContent(ext string) *PostContent {
	return &PostContent{Typed: true, Value: ext}
}

// MarshalJSON はバリアントに応じて平文文字列またはtypeオブジェクトを出力する。
func (c PostContent) MarshalJSON() ([]byte, error) {
	if c.Typed {
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: c.Value})
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON は文字列またはtypeオブジェクトのどちらかとしてデコードする。
func (c *PostContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = PostContent{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("コンテンツオブジェクトのデコードに失敗しました: %w", err)
		}
		*c = PostContent{Typed: true, Value: obj.Type}
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("コンテンツ文字列のデコードに失敗しました: %w", err)
	}
	*c = PostContent{Value: s}
	return nil
}
