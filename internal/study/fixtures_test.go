package study

import (
	"time"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// --- 共有テストフィクスチャ ---

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func defaultReaction() *ReactionDocument {
	return &ReactionDocument{
		Mean:         defaultReactionMean,
		StdDeviation: defaultReactionStdDeviation,
		SkewShape:    defaultReactionSkewShape,
		Min:          defaultReactionMin,
		Max:          defaultReactionMax,
	}
}

func reactionGroup() *ReactionGroupDocument {
	return &ReactionGroupDocument{
		Like:    defaultReaction(),
		Dislike: defaultReaction(),
		Share:   defaultReaction(),
		Flag:    defaultReaction(),
	}
}

// validDocument は検証を通過する完全なスタディドキュメントを返す。
// ソース1件・投稿1件（コメント1件付き）を持つ。
func validDocument() *StudyDocument {
	return &StudyDocument{
		Version:          intPtr(1),
		AuthorID:         "author-1",
		AuthorName:       "Dana Reed",
		LastModifiedTime: int64Ptr(1700000000),
		Enabled:          boolPtr(false),
		BasicSettings: &BasicSettingsDocument{
			Name:             "ニュース判断スタディ",
			Description:      "ソーシャルフィードの投稿の真偽を判断する",
			Prompt:           "以下の投稿を見て反応してください",
			Length:           10,
			RequireComments:  "optional",
			RequireReactions: true,
		},
		UISettings: &UISettingsDocument{
			DisplayPostsInFeed:   true,
			DisplayFollowers:     true,
			DisplayCredibility:   true,
			DisplayProgress:      true,
			PostEnabledReactions: &PostEnabledReactionsDocument{Like: true, Dislike: true, Share: true, Flag: true, Skip: true},
			CommentEnabledReactions: &CommentEnabledReactionsDocument{Like: true, Dislike: true},
		},
		AdvancedSettings: &AdvancedSettingsDocument{
			MinimumCommentLength: 5,
			PromptDelaySeconds:   1.5,
			ReactDelaySeconds:    0.5,
			GenCompletionCode:    true,
			CompletionCodeDigits: 6,
		},
		PagesSettings: &PagesSettingsDocument{
			PreIntro:              "<p>はじめに</p>",
			PreIntroDelaySeconds:  3,
			Rules:                 "<p>ルール</p>",
			RulesDelaySeconds:     5,
			PostIntro:             "<p>開始します</p>",
			PostIntroDelaySeconds: 2,
			Debrief:               "<p>ご協力ありがとうございました</p>",
		},
		SourcePostSelectionMethod: &SelectionMethodDocument{
			Type:               "credibility",
			LinearRelationship: &LinearRelationshipDocument{Slope: 0.5, Intercept: 1},
		},
		Sources: []*SourceDocument{
			{
				ID:     "S1",
				Name:   "Daily Bugle",
				Avatar: &AvatarDocument{Type: "png"},
				Style:  &StyleDocument{BackgroundColor: styleBackgroundColor},
				Followers: &DistributionDocument{
					Mean: 100, StdDeviation: 20, SkewShape: 1,
					Min: followerBoundMin, Max: followerBoundMax,
				},
				Credibility: &DistributionDocument{
					Mean: 60, StdDeviation: 10, SkewShape: 1,
					Min: credibilityBoundMin, Max: credibilityBoundMax,
				},
				TruePostPercentage: 50,
			},
		},
		Posts: []*PostDocument{
			{
				ID:                   "P1",
				Headline:             "速報: 重大ニュース",
				Content:              PlainContent("本文テキスト"),
				IsTrue:               boolPtr(true),
				ChangesToFollowers:   reactionGroup(),
				ChangesToCredibility: reactionGroup(),
				NumberOfReactions:    reactionGroup(),
				Comments: []*CommentDocument{
					{
						SourceName: "読者A",
						Message:    "本当かな",
						NumberOfReactions: &CommentReactionsDocument{
							Like:    defaultReaction(),
							Dislike: defaultReaction(),
						},
					},
				},
			},
		},
	}
}

// assembledStudy はJOIN展開済みのスタディ行を返す。デハイドレーションの入力になる。
func assembledStudy() *model.Study {
	return &model.Study{
		ID:               "study-1",
		Enabled:          true,
		CreatedByID:      "user-id-123",
		AuthorName:       "Dana Reed",
		LastModifiedTime: 1700000000,
		CreatedAt:        time.Unix(1700000000, 0),
		Basic: &model.BasicSettings{
			ID:               "basic-1",
			Name:             "ニュース判断スタディ",
			Description:      "説明",
			Prompt:           "プロンプト",
			Length:           10,
			RequireComments:  "optional",
			RequireReactions: true,
		},
		Advanced: &model.AdvancedSettings{
			ID:                   "adv-1",
			MinimumCommentLength: 5,
			PromptDelaySeconds:   1.5,
			ReactDelaySeconds:    0.5,
			GenCompletionCode:    true,
			CompletionCodeDigits: 6,
		},
		UI: &model.UISettings{
			ID:                 "ui-1",
			DisplayPostsInFeed: true,
			PostEnableLike:     true,
			PostEnableDislike:  true,
			CommentEnableLike:  true,
		},
		Pages: &model.PagesSettings{
			ID:                    "pages-1",
			PreIntro:              "<p>はじめに</p>",
			PreIntroDelaySeconds:  3,
			Rules:                 "<p>ルール</p>",
			RulesDelaySeconds:     5,
			PostIntro:             "<p>開始します</p>",
			PostIntroDelaySeconds: 2,
			Debrief:               "<p>終わり</p>",
		},
		Selection: &model.PostSelectionMethod{
			ID:              "sel-1",
			Type:            "credibility",
			LinearSlope:     0.5,
			LinearIntercept: 1,
		},
	}
}

func rowPost(id, studyID string) *model.Post {
	return &model.Post{
		ID:       id,
		StudyID:  studyID,
		Headline: "見出し " + id,
		Content:  "本文 " + id,
		IsTrue:   true,
	}
}

func rowComment(id, postID string) *model.Comment {
	return &model.Comment{
		ID:         id,
		PostID:     postID,
		SourceName: "読者",
		Message:    "コメント " + id,
		Like:       model.Distribution{Mean: 1, StdDeviation: 1, SkewShape: 1, Min: 0, Max: 10},
		Dislike:    model.Distribution{Mean: 1, StdDeviation: 1, SkewShape: 1, Min: 0, Max: 10},
	}
}

func rowSource(id, studyID string) *model.Source {
	return &model.Source{
		ID:       id,
		StudyID:  studyID,
		Name:     "ソース " + id,
		FileName: "S9",
		MaxPosts: 5,
		Avatar:   &model.Avatar{ID: "avatar-" + id, Type: "png"},
		Style:    &model.SourceStyle{ID: "style-" + id, BackgroundColor: "#ffffff"},
		FollowersDist: model.Distribution{
			Mean: 100, StdDeviation: 20, SkewShape: 1, Min: 5, Max: 9999,
		},
		CredibilityDist: model.Distribution{
			Mean: 60, StdDeviation: 10, SkewShape: 2, Min: 5, Max: 9999,
		},
		TruePostPercentage: 50,
	}
}
