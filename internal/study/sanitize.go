package study

import (
	"github.com/haddriax/MisinformationGame-API/internal/security"
)

// sanitizeDocument はドキュメント内のユーザー入力テキストをその場でサニタイズする。
// 参加者クライアントに表示されるフィールドが対象となる。
// ページ設定はリッチテキストを許可し、それ以外は全マークアップを除去する。
// 検証通過後・ハイドレーション前に適用される。
func sanitizeDocument(doc *StudyDocument, sanitizer security.ContentSanitizerService) {
	doc.AuthorName = sanitizer.SanitizeText(doc.AuthorName)

	doc.BasicSettings.Name = sanitizer.SanitizeText(doc.BasicSettings.Name)
	doc.BasicSettings.Description = sanitizer.SanitizeText(doc.BasicSettings.Description)
	doc.BasicSettings.Prompt = sanitizer.SanitizeText(doc.BasicSettings.Prompt)

	doc.PagesSettings.PreIntro = sanitizer.SanitizePage(doc.PagesSettings.PreIntro)
	doc.PagesSettings.Rules = sanitizer.SanitizePage(doc.PagesSettings.Rules)
	doc.PagesSettings.PostIntro = sanitizer.SanitizePage(doc.PagesSettings.PostIntro)
	doc.PagesSettings.Debrief = sanitizer.SanitizePage(doc.PagesSettings.Debrief)

	for _, source := range doc.Sources {
		source.Name = sanitizer.SanitizeText(source.Name)
	}

	for _, post := range doc.Posts {
		post.Headline = sanitizer.SanitizeText(post.Headline)
		// 型付きコンテンツ（ファイル拡張子）はハイドレーション側で
		// 引用符・空白の除去が保証されるため対象外。
		if post.Content != nil && !post.Content.Typed {
			post.Content.Value = sanitizer.SanitizeText(post.Content.Value)
		}

		for _, comment := range post.Comments {
			comment.SourceName = sanitizer.SanitizeText(comment.SourceName)
			comment.Message = sanitizer.SanitizeText(comment.Message)
		}
	}
}
