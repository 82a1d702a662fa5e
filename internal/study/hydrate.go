package study

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haddriax/MisinformationGame-API/internal/model"
	"github.com/haddriax/MisinformationGame-API/internal/repository"
)

// ハイドレーションでソース行に書き込むランタイム現在値のシード。
// 分布パラメータからは導出されない固定値。
const initialSourceRuntimeValue = 500

// レガシークライアント互換のコンテンツエンコード。
// 型付きコンテンツは "type=<ext>" 形式の文字列として永続化される。
const typedContentPrefix = "type="

// Hydrate は検証済みのスタディドキュメントをリレーショナル行の束に変換する。
// 純粋関数であり、副作用を持たない。子エンティティには全て新しいUUIDを
// 採番するが、スタディ本体だけはドキュメントのIDを保持する（IDがない場合のみ採番）。
// 前提条件としてValidateDocumentを通過したドキュメントを受け取る。
func Hydrate(doc *StudyDocument) *repository.StudyRows {
	now := time.Now()

	basic := &model.BasicSettings{
		ID:                    uuid.NewString(),
		Name:                  doc.BasicSettings.Name,
		Description:           doc.BasicSettings.Description,
		Prompt:                doc.BasicSettings.Prompt,
		Length:                doc.BasicSettings.Length,
		RequireComments:       doc.BasicSettings.RequireComments,
		RequireReactions:      doc.BasicSettings.RequireReactions,
		RequireIdentification: doc.BasicSettings.RequireIdentification,
	}

	advanced := &model.AdvancedSettings{
		ID:                      uuid.NewString(),
		MinimumCommentLength:    doc.AdvancedSettings.MinimumCommentLength,
		PromptDelaySeconds:      doc.AdvancedSettings.PromptDelaySeconds,
		ReactDelaySeconds:       doc.AdvancedSettings.ReactDelaySeconds,
		GenCompletionCode:       doc.AdvancedSettings.GenCompletionCode,
		CompletionCodeDigits:    doc.AdvancedSettings.CompletionCodeDigits,
		GenRandomDefaultAvatars: doc.AdvancedSettings.GenRandomDefaultAvatars,
	}

	ui := &model.UISettings{
		ID:                       uuid.NewString(),
		DisplayPostsInFeed:       doc.UISettings.DisplayPostsInFeed,
		DisplayFollowers:         doc.UISettings.DisplayFollowers,
		DisplayCredibility:       doc.UISettings.DisplayCredibility,
		DisplayProgress:          doc.UISettings.DisplayProgress,
		DisplayNumberOfReactions: doc.UISettings.DisplayNumberOfReactions,
		AllowMultipleReactions:   doc.UISettings.AllowMultipleReactions,
		CommentEnableLike:        doc.UISettings.CommentEnabledReactions.Like,
		CommentEnableDislike:     doc.UISettings.CommentEnabledReactions.Dislike,
		PostEnableLike:           doc.UISettings.PostEnabledReactions.Like,
		PostEnableDislike:        doc.UISettings.PostEnabledReactions.Dislike,
		PostEnableShare:          doc.UISettings.PostEnabledReactions.Share,
		PostEnableFlag:           doc.UISettings.PostEnabledReactions.Flag,
		PostEnableSkip:           doc.UISettings.PostEnabledReactions.Skip,
	}

	pages := &model.PagesSettings{
		ID:                    uuid.NewString(),
		PreIntro:              doc.PagesSettings.PreIntro,
		PreIntroDelaySeconds:  doc.PagesSettings.PreIntroDelaySeconds,
		Rules:                 doc.PagesSettings.Rules,
		RulesDelaySeconds:     float64(doc.PagesSettings.RulesDelaySeconds),
		PostIntro:             doc.PagesSettings.PostIntro,
		PostIntroDelaySeconds: float64(doc.PagesSettings.PostIntroDelaySeconds),
		Debrief:               doc.PagesSettings.Debrief,
	}

	selection := &model.PostSelectionMethod{
		ID:              uuid.NewString(),
		Type:            doc.SourcePostSelectionMethod.Type,
		LinearSlope:     doc.SourcePostSelectionMethod.LinearRelationship.Slope,
		LinearIntercept: float64(doc.SourcePostSelectionMethod.LinearRelationship.Intercept),
	}

	studyID := doc.ID
	if studyID == "" {
		studyID = uuid.NewString()
	}

	study := &model.Study{
		ID:                 studyID,
		Enabled:            *doc.Enabled,
		BasicSettingsID:    basic.ID,
		AdvancedSettingsID: advanced.ID,
		UISettingsID:       ui.ID,
		PagesSettingsID:    pages.ID,
		SelectionMethodID:  selection.ID,
		LastModifiedTime:   *doc.LastModifiedTime,
		CreatedAt:          now,
	}

	rows := &repository.StudyRows{
		Study:     study,
		Basic:     basic,
		Advanced:  advanced,
		UI:        ui,
		Pages:     pages,
		Selection: selection,
	}

	for _, sourceDoc := range doc.Sources {
		source, avatar, style := hydrateSource(sourceDoc, studyID, now)
		rows.Sources = append(rows.Sources, source)
		rows.Styles = append(rows.Styles, style)
		if avatar != nil {
			rows.Avatars = append(rows.Avatars, avatar)
		}
	}

	for _, postDoc := range doc.Posts {
		post := hydratePost(postDoc, studyID, now)
		rows.Posts = append(rows.Posts, post)

		for _, commentDoc := range postDoc.Comments {
			rows.Comments = append(rows.Comments, hydrateComment(commentDoc, post.ID, now))
		}
	}

	return rows
}

// hydrateSource はソースドキュメントをソース行・アバター行・スタイル行に変換する。
// アバターはドキュメントに存在する場合のみ生成されるが、スタイルは常に生成される。
// 分布はmean/stdDeviation/skewShapeのみドキュメントから写し取り、
// min/maxはドメイン定数（フォロワー0..250、信頼度0..100）で固定する。
func hydrateSource(doc *SourceDocument, studyID string, now time.Time) (*model.Source, *model.Avatar, *model.SourceStyle) {
	var avatar *model.Avatar
	if doc.Avatar != nil {
		avatar = &model.Avatar{ID: uuid.NewString(), Type: doc.Avatar.Type}
	}

	style := &model.SourceStyle{ID: uuid.NewString(), BackgroundColor: styleBackgroundColor}
	if doc.Style != nil {
		style.BackgroundColor = doc.Style.BackgroundColor
	}

	maxPosts := unlimitedPostsSentinel
	if doc.MaxPosts != nil {
		maxPosts = *doc.MaxPosts
	}

	source := &model.Source{
		ID:      uuid.NewString(),
		StudyID: studyID,
		Name:    doc.Name,
		// レガシークライアントはソースの表示IDをfile_nameで照合する。
		FileName:           doc.ID,
		MaxPosts:           maxPosts,
		TruePostPercentage: doc.TruePostPercentage,
		StyleID:            style.ID,
		Followers:          initialSourceRuntimeValue,
		Credibility:        initialSourceRuntimeValue,
		FollowersDist: model.Distribution{
			Mean:         float64(doc.Followers.Mean),
			StdDeviation: float64(doc.Followers.StdDeviation),
			SkewShape:    doc.Followers.SkewShape,
			Min:          followerBoundMin,
			Max:          followerBoundMax,
		},
		CredibilityDist: model.Distribution{
			Mean:         float64(doc.Credibility.Mean),
			StdDeviation: float64(doc.Credibility.StdDeviation),
			SkewShape:    doc.Credibility.SkewShape,
			Min:          credibilityBoundMin,
			Max:          credibilityBoundMax,
		},
		CreatedAt: now,
	}
	if avatar != nil {
		source.AvatarID = avatar.ID
	}

	return source, avatar, style
}

// hydratePost は投稿ドキュメントを投稿行に変換する。
func hydratePost(doc *PostDocument, studyID string, now time.Time) *model.Post {
	return &model.Post{
		ID:                uuid.NewString(),
		StudyID:           studyID,
		Headline:          doc.Headline,
		Content:           collapseContent(doc.Content),
		IsTrue:            *doc.IsTrue,
		FollowerChange:    hydrateReactionGroup(doc.ChangesToFollowers),
		CredibilityChange: hydrateReactionGroup(doc.ChangesToCredibility),
		ReactionCount:     hydrateReactionGroup(doc.NumberOfReactions),
		CreatedAt:         now,
	}
}

// hydrateComment はコメントドキュメントをコメント行に変換する。
// flag/shareが省略されている場合はゼロ値の5つ組を書き込む。
func hydrateComment(doc *CommentDocument, postID string, now time.Time) *model.Comment {
	return &model.Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		SourceName: doc.SourceName,
		Message:    doc.Message,
		Like:       hydrateDistribution(doc.NumberOfReactions.Like),
		Dislike:    hydrateDistribution(doc.NumberOfReactions.Dislike),
		Flag:       hydrateDistribution(doc.NumberOfReactions.Flag),
		Share:      hydrateDistribution(doc.NumberOfReactions.Share),
		CreatedAt:  now,
	}
}

// collapseContent はタグ付きコンテンツを永続化用の文字列に畳み込む。
// 欠落は空文字列、型付きは "type=<ext>"、平文はそのままの文字列になる。
func collapseContent(content *PostContent) string {
	switch {
	case content == nil:
		return ""
	case content.Typed:
		return fmt.Sprintf("%s%s", typedContentPrefix, content.Value)
	default:
		return content.Value
	}
}

func hydrateReactionGroup(group *ReactionGroupDocument) model.ReactionEffects {
	return model.ReactionEffects{
		Like:    hydrateDistribution(group.Like),
		Dislike: hydrateDistribution(group.Dislike),
		Share:   hydrateDistribution(group.Share),
		Flag:    hydrateDistribution(group.Flag),
	}
}

// hydrateDistribution はリアクション分布を行の5つ組に写し取る。
// nil（省略されたflag/shareなど）はゼロ値の5つ組になる。
func hydrateDistribution(r *ReactionDocument) model.Distribution {
	if r == nil {
		return model.Distribution{}
	}
	return model.Distribution{
		Mean:         r.Mean,
		StdDeviation: r.StdDeviation,
		SkewShape:    r.SkewShape,
		Min:          r.Min,
		Max:          r.Max,
	}
}
