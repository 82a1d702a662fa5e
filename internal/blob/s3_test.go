package blob

import (
	"errors"
	"testing"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

func TestImageKeyFromPath_DerivesKey(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			"標準的なアセットパス",
			"/assets/studies/MyStudy/avatar1.png",
			"mystudy/avatar1.png",
		},
		{
			"先頭スラッシュなし",
			"assets/studies/MyStudy/avatar1.png",
			"mystudy/avatar1.png",
		},
		{
			"連続スラッシュは空要素として除かれる",
			"//assets//studies//Study-A//photo.jpg",
			"study-a/photo.jpg",
		},
		{
			"余分な末尾要素は無視される",
			"/assets/studies/Study/file.png/extra",
			"study/file.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageKeyFromPath(tt.path)
			if err != nil {
				t.Fatalf("ImageKeyFromPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ImageKeyFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestImageKeyFromPath_TooFewComponents_ReturnsImageInvalid(t *testing.T) {
	tests := []string{
		"",
		"/",
		"/assets",
		"/assets/studies",
		"/assets/studies/onlythree",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := ImageKeyFromPath(path)
			if err == nil {
				t.Fatalf("expected error for path %q", path)
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Code != model.ErrCodeImageInvalid {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeImageInvalid)
			}
		})
	}
}
