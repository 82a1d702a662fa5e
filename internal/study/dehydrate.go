package study

import (
	"fmt"
	"strings"
	"time"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// デハイドレーションで出力されるドキュメントのドメイン定数。
const (
	// studyDocumentVersion は出力ドキュメントのスキーマバージョン。
	studyDocumentVersion = 1

	// styleBackgroundColor はソーススタイルの背景色。
	// 出力では保存値に関わらず常にこの定数を用いる。
	styleBackgroundColor = "#8fd186"

	// unlimitedPostsSentinel は投稿数無制限を表す番兵値。
	unlimitedPostsSentinel = -1

	// フォロワー・信頼度分布の境界。保存値のmin/maxは出力に使われず、
	// 常にこの境界で上書きされる。
	followerBoundMin    = 0
	followerBoundMax    = 250
	credibilityBoundMin = 0
	credibilityBoundMax = 100

	// 作成者が紐付いていないスタディに出力するリテラル。
	absentAuthorLiteral = "None"

	// 作成者FKはあるがユーザー行が引けない場合の代替名。
	unknownAuthorName = "Unknown"
)

// Dehydrate はリレーショナルなスタディと再グループ済みの投稿・ソースから
// 正準のネストされたJSONドキュメントを組み立てる。
// 表示用の連番ID（P1..Pn / S1..Sn）は呼び出しごとに新しく採番され、
// 永続化されたIDとは独立している。lastModifiedTimeは保存値ではなく
// デハイドレーション時点の現在時刻が刻まれる。
func Dehydrate(s *model.Study, threads []*PostThread, sources []*model.Source) (*StudyDocument, error) {
	if s.Basic == nil || s.Advanced == nil || s.UI == nil || s.Pages == nil || s.Selection == nil {
		return nil, model.NewDataIntegrityError(
			fmt.Sprintf("スタディ %s の設定グループが展開されていません", s.ID))
	}

	posts := make([]*PostDocument, 0, len(threads))
	for i, thread := range threads {
		post, err := dehydratePost(thread, fmt.Sprintf("P%d", i+1))
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	sourceDocs := make([]*SourceDocument, 0, len(sources))
	for i, source := range sources {
		sourceDocs = append(sourceDocs, dehydrateSource(source, s.ID, fmt.Sprintf("S%d", i+1)))
	}

	version := studyDocumentVersion
	lastModified := time.Now().Unix()
	enabled := s.Enabled

	authorID := absentAuthorLiteral
	authorName := absentAuthorLiteral
	if s.CreatedByID != "" {
		authorID = s.CreatedByID
		authorName = s.AuthorName
		if authorName == "" {
			authorName = unknownAuthorName
		}
	}

	return &StudyDocument{
		ID:               s.ID,
		Version:          &version,
		AuthorID:         authorID,
		AuthorName:       authorName,
		LastModifiedTime: &lastModified,
		Enabled:          &enabled,
		BasicSettings: &BasicSettingsDocument{
			Name:                  s.Basic.Name,
			Description:           s.Basic.Description,
			Prompt:                s.Basic.Prompt,
			Length:                s.Basic.Length,
			RequireComments:       s.Basic.RequireComments,
			RequireReactions:      s.Basic.RequireReactions,
			RequireIdentification: s.Basic.RequireIdentification,
		},
		UISettings: &UISettingsDocument{
			DisplayPostsInFeed:       s.UI.DisplayPostsInFeed,
			DisplayFollowers:         s.UI.DisplayFollowers,
			DisplayCredibility:       s.UI.DisplayCredibility,
			DisplayProgress:          s.UI.DisplayProgress,
			DisplayNumberOfReactions: s.UI.DisplayNumberOfReactions,
			AllowMultipleReactions:   s.UI.AllowMultipleReactions,
			PostEnabledReactions: &PostEnabledReactionsDocument{
				Like:    s.UI.PostEnableLike,
				Dislike: s.UI.PostEnableDislike,
				Share:   s.UI.PostEnableShare,
				Flag:    s.UI.PostEnableFlag,
				Skip:    s.UI.PostEnableSkip,
			},
			CommentEnabledReactions: &CommentEnabledReactionsDocument{
				Like:    s.UI.CommentEnableLike,
				Dislike: s.UI.CommentEnableDislike,
			},
		},
		AdvancedSettings: &AdvancedSettingsDocument{
			MinimumCommentLength:    s.Advanced.MinimumCommentLength,
			PromptDelaySeconds:      s.Advanced.PromptDelaySeconds,
			ReactDelaySeconds:       s.Advanced.ReactDelaySeconds,
			GenCompletionCode:       s.Advanced.GenCompletionCode,
			CompletionCodeDigits:    s.Advanced.CompletionCodeDigits,
			GenRandomDefaultAvatars: s.Advanced.GenRandomDefaultAvatars,
		},
		PagesSettings: &PagesSettingsDocument{
			PreIntro:              s.Pages.PreIntro,
			PreIntroDelaySeconds:  s.Pages.PreIntroDelaySeconds,
			Rules:                 s.Pages.Rules,
			RulesDelaySeconds:     int(s.Pages.RulesDelaySeconds),
			PostIntro:             s.Pages.PostIntro,
			PostIntroDelaySeconds: int(s.Pages.PostIntroDelaySeconds),
			Debrief:               s.Pages.Debrief,
		},
		SourcePostSelectionMethod: &SelectionMethodDocument{
			Type: s.Selection.Type,
			LinearRelationship: &LinearRelationshipDocument{
				Slope:     s.Selection.LinearSlope,
				Intercept: int(s.Selection.LinearIntercept),
			},
		},
		Sources: sourceDocs,
		Posts:   posts,
	}, nil
}

// dehydratePost は投稿1件とそのコメントをドキュメントに変換する。
func dehydratePost(thread *PostThread, displayID string) (*PostDocument, error) {
	post := thread.Post

	comments := make([]*CommentDocument, 0, len(thread.Comments))
	for _, comment := range thread.Comments {
		doc, err := dehydrateComment(comment)
		if err != nil {
			return nil, err
		}
		comments = append(comments, doc)
	}

	isTrue := post.IsTrue
	return &PostDocument{
		ID:                   displayID,
		Headline:             post.Headline,
		Content:              expandContent(post.Content),
		IsTrue:               &isTrue,
		ChangesToFollowers:   dehydrateReactionGroup(post.FollowerChange),
		ChangesToCredibility: dehydrateReactionGroup(post.CredibilityChange),
		NumberOfReactions:    dehydrateReactionGroup(post.ReactionCount),
		Comments:             comments,
	}, nil
}

// dehydrateComment はコメントをライトビューのドキュメントに変換する。
// 保存されているflag/shareの分布は出力に含めない。
func dehydrateComment(comment *model.Comment) (*CommentDocument, error) {
	if comment.SourceName == "" || comment.Message == "" {
		return nil, model.NewDataIntegrityError(
			fmt.Sprintf("コメント %s に必須フィールドがありません", comment.ID))
	}

	return &CommentDocument{
		SourceName: comment.SourceName,
		Message:    comment.Message,
		NumberOfReactions: &CommentReactionsDocument{
			Like:    dehydrateDistribution(comment.Like),
			Dislike: dehydrateDistribution(comment.Dislike),
		},
	}, nil
}

// dehydrateSource はソース1件をドキュメントに変換する。
// アバターが紐付いていない場合はavatarもstyleも出力されない。
// スタイルの背景色は保存値に関わらず固定定数を用い、
// 分布のmin/maxはドメイン境界で上書きされる。
func dehydrateSource(source *model.Source, studyID, displayID string) *SourceDocument {
	var avatar *AvatarDocument
	var style *StyleDocument
	if source.Avatar != nil {
		avatar = &AvatarDocument{Type: source.Avatar.Type}
		style = &StyleDocument{BackgroundColor: styleBackgroundColor}
	}

	maxPosts := source.MaxPosts
	if maxPosts <= 0 {
		maxPosts = unlimitedPostsSentinel
	}

	return &SourceDocument{
		ID:            displayID,
		LinkedStudyID: studyID,
		FileName:      source.FileName,
		Name:          source.Name,
		Avatar:        avatar,
		Style:         style,
		MaxPosts:      &maxPosts,
		Followers: &DistributionDocument{
			Mean:         int(source.FollowersDist.Mean),
			StdDeviation: int(source.FollowersDist.StdDeviation),
			SkewShape:    source.FollowersDist.SkewShape,
			Min:          followerBoundMin,
			Max:          followerBoundMax,
		},
		Credibility: &DistributionDocument{
			Mean:         int(source.CredibilityDist.Mean),
			StdDeviation: int(source.CredibilityDist.StdDeviation),
			SkewShape:    source.CredibilityDist.SkewShape,
			Min:          credibilityBoundMin,
			Max:          credibilityBoundMax,
		},
		TruePostPercentage: source.TruePostPercentage,
	}
}

// expandContent は永続化された文字列をタグ付きコンテンツに展開する。
// "type=" を含む文字列は型付きコンテンツとして扱い、
// 2番目のセグメントから引用符と空白を取り除いた値を拡張子とする。
func expandContent(content string) *PostContent {
	if !strings.Contains(content, typedContentPrefix) {
		return PlainContent(content)
	}

	ext := strings.Split(content, "=")[1]
	ext = strings.ReplaceAll(ext, "'", "")
	ext = strings.ReplaceAll(ext, " ", "")
	return TypedContent(ext)
}

func dehydrateReactionGroup(e model.ReactionEffects) *ReactionGroupDocument {
	return &ReactionGroupDocument{
		Like:    dehydrateDistribution(e.Like),
		Dislike: dehydrateDistribution(e.Dislike),
		Share:   dehydrateDistribution(e.Share),
		Flag:    dehydrateDistribution(e.Flag),
	}
}

func dehydrateDistribution(d model.Distribution) *ReactionDocument {
	return &ReactionDocument{
		Mean:         d.Mean,
		StdDeviation: d.StdDeviation,
		SkewShape:    d.SkewShape,
		Min:          d.Min,
		Max:          d.Max,
	}
}
