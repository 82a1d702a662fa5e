// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はスタディドキュメントに含まれるテキストをサニタイズし、
// 参加者クライアントでのXSS攻撃からユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はスタディドキュメントのサニタイズ機能のインターフェースを定義する。
// スタディアップロード時、ハイドレーションの前に適用される。
type ContentSanitizerService interface {
	// SanitizeText はプレーンテキストフィールドから全てのマークアップを除去する。
	// 見出し・ソース名・コメント本文など、HTMLを含むべきでないフィールドに使う。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizePage はページ設定のHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img, h1-h3）のみを
	// 通過させ、script, iframe, styleタグおよびon*イベント属性を除去する。
	// imgタグのsrc属性はhttpsスキームのみ許可される。
	SanitizePage(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	textPolicy *bluemonday.Policy
	pagePolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayの2つのポリシーを構築する。
//   - テキストポリシー: 全タグを除去（StrictPolicy）
//   - ページポリシー: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img, h1-h3を許可。
//     script, iframe, style等は許可リストに含めないことで自動的に除去される。
//     on*イベント属性はbluemondayのデフォルトで許可されないため除去される。
//     imgのsrc属性はhttpsスキームのみ許可。
//     aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
		"h1", "h2", "h3",
	)

	// ページ内リンクは外部タブで開かせ、リファラを渡さない。
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// 画像はhttpsのみ。altはアクセシビリティのため許可する。
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemes("https")

	return &contentSanitizer{
		textPolicy: bluemonday.StrictPolicy(),
		pagePolicy: p,
	}
}

// SanitizeText はプレーンテキストフィールドから全てのマークアップを除去する。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return s.textPolicy.Sanitize(raw)
}

// SanitizePage はページ設定のHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizePage(rawHTML string) string {
	return s.pagePolicy.Sanitize(rawHTML)
}
