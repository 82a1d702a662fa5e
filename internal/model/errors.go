package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, study, result, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeStudyNotFound      = "STUDY_NOT_FOUND"
	ErrCodeDocumentInvalid    = "DOCUMENT_INVALID"
	ErrCodeDataIntegrity      = "DATA_INTEGRITY"
	ErrCodeResultInvalid      = "RESULT_INVALID"
	ErrCodeImageInvalid       = "IMAGE_INVALID"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewStudyNotFoundError はスタディ未検出エラーを生成する。
func NewStudyNotFoundError(studyID string) *APIError {
	return &APIError{
		Code:     ErrCodeStudyNotFound,
		Message:  fmt.Sprintf("指定されたスタディが見つかりません: %s", studyID),
		Category: "study",
		Action:   "スタディIDを確認してください。",
	}
}

// NewDocumentInvalidError はスタディドキュメントの検証エラーを生成する。
// fieldPathには違反したフィールドのJSONパス（例: basicSettings.name）を渡す。
func NewDocumentInvalidError(fieldPath, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeDocumentInvalid,
		Message:  fmt.Sprintf("スタディドキュメントが不正です: %s: %s", fieldPath, reason),
		Category: "validation",
		Action:   "該当フィールドの値を修正してから再度アップロードしてください。",
	}
}

// NewDataIntegrityError は永続化データの整合性エラーを生成する。
// 再グループ化で未知の投稿を参照するコメントを検出した場合などに使う。
func NewDataIntegrityError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeDataIntegrity,
		Message:  fmt.Sprintf("スタディデータの整合性が取れていません: %s", reason),
		Category: "system",
		Action:   "スタディを再アップロードしてください。解決しない場合は管理者に連絡してください。",
	}
}

// NewResultInvalidError は結果ドキュメントの検証エラーを生成する。
func NewResultInvalidError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeResultInvalid,
		Message:  fmt.Sprintf("結果ドキュメントが不正です: %s", reason),
		Category: "result",
		Action:   "結果データの形式を確認してください。",
	}
}

// NewImageInvalidError は画像アップロードの検証エラーを生成する。
func NewImageInvalidError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeImageInvalid,
		Message:  fmt.Sprintf("画像データが不正です: %s", reason),
		Category: "validation",
		Action:   "Base64エンコードされたPNG/JPEG画像をアップロードしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// ユーザー不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証されていません。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
