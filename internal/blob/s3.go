// Package blob はスタディ画像のオブジェクトストレージへの保存を提供する。
// S3互換バックエンド（AWS S3またはMinIO）の単一バケットに、
// レガシークライアントのパス規約から導出したキーで画像を配置する。
package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// ImageStore は画像アップロードのインターフェース。
type ImageStore interface {
	// UploadImage はBase64エンコードされた画像をストレージに保存し、
	// 公開URLを返す。pathはレガシークライアントのアセットパス
	// （例: /assets/studies/<study>/<file>）で、そこからキーを導出する。
	UploadImage(ctx context.Context, path, base64Data string) (string, error)
}

// Config はS3ImageStoreの構築パラメータ。
type Config struct {
	Region        string
	Bucket        string
	Endpoint      string // MinIO等のカスタムエンドポイント。空ならAWS S3。
	PathStyle     bool
	PublicBaseURL string // 公開URLのベース。空ならエンドポイントから組み立てる。
}

// S3ImageStore はImageStoreのS3実装。
type S3ImageStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3ImageStore はS3ImageStoreを生成する。
// 認証情報はAWSのデフォルト認証チェーン（環境変数等）から解決される。
func NewS3ImageStore(ctx context.Context, cfg Config) (*S3ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3バケット名が設定されていません")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
		}
	}

	return &S3ImageStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// UploadImage はBase64エンコードされた画像をデコード・検証して保存する。
// PNG/JPEG以外の画像、不正なBase64、不正なパスはIMAGE_INVALIDエラーになる。
func (s *S3ImageStore) UploadImage(ctx context.Context, path, base64Data string) (string, error) {
	key, err := ImageKeyFromPath(path)
	if err != nil {
		return "", err
	}

	// data URLプレフィックス付きで送られてくる場合は剥がす。
	if i := strings.Index(base64Data, ";base64,"); i >= 0 {
		base64Data = base64Data[i+len(";base64,"):]
	}

	imageBytes, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", model.NewImageInvalidError("Base64として解釈できません")
	}

	contentType := http.DetectContentType(imageBytes)
	if contentType != "image/png" && contentType != "image/jpeg" {
		return "", model.NewImageInvalidError(fmt.Sprintf("サポートされない画像形式です: %s", contentType))
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageBytes),
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("画像のアップロードに失敗しました: %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// ImageKeyFromPath はレガシークライアントのアセットパスからオブジェクトキーを導出する。
// パスを"/"で区切って空要素を除き、3番目の要素を小文字化したものをプレフィックス、
// 4番目の要素をファイル名としてキーを組み立てる。
func ImageKeyFromPath(path string) (string, error) {
	var components []string
	for _, component := range strings.Split(path, "/") {
		if component != "" {
			components = append(components, component)
		}
	}

	if len(components) < 4 {
		return "", model.NewImageInvalidError(fmt.Sprintf("画像パスの形式が不正です: %s", path))
	}

	return strings.ToLower(components[2]) + "/" + components[3], nil
}

// compile-time interface check
var _ ImageStore = (*S3ImageStore)(nil)
