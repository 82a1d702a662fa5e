package study

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// documentValidator はドキュメント検証用の共有インスタンス。
// エラーメッセージにJSONのフィールド名が現れるようタグ名を差し替える。
var documentValidator = newDocumentValidator()

func newDocumentValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateDocument はスタディドキュメントのスキーマ検証を行う。
// 必須フィールドの欠落を最初の違反フィールドのパス付きで報告する。
// 検証はハイドレーションの前提条件であり、ここを通過したドキュメントは
// ハイドレーション中にnil参照を起こさない。
func ValidateDocument(doc *StudyDocument) error {
	if doc == nil {
		return model.NewDocumentInvalidError("(root)", "ドキュメントが空です")
	}

	err := documentValidator.Struct(doc)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Errorf("ドキュメントの検証に失敗しました: %w", err)
	}

	first := verrs[0]
	return model.NewDocumentInvalidError(fieldPath(first), violationReason(first))
}

// fieldPath は検証エラーからルート型名を除いたフィールドパスを組み立てる。
func fieldPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	return path
}

func violationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須フィールドがありません"
	default:
		return fmt.Sprintf("検証ルール %q に違反しています", fe.Tag())
	}
}
