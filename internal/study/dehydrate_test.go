package study

import (
	"errors"
	"testing"
	"time"

	"github.com/haddriax/MisinformationGame-API/internal/model"
)

func TestDehydrate_AssemblesDocument(t *testing.T) {
	s := assembledStudy()
	threads := []*PostThread{
		{Post: rowPost("post-1", s.ID), Comments: []*model.Comment{rowComment("comment-1", "post-1")}},
	}
	sources := []*model.Source{rowSource("source-1", s.ID)}

	doc, err := Dehydrate(s, threads, sources)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	if doc.ID != s.ID {
		t.Errorf("ID = %q, want %q", doc.ID, s.ID)
	}
	if *doc.Version != 1 {
		t.Errorf("Version = %d, want 1", *doc.Version)
	}
	if *doc.Enabled != s.Enabled {
		t.Errorf("Enabled = %v, want %v", *doc.Enabled, s.Enabled)
	}
	if doc.BasicSettings.Name != s.Basic.Name {
		t.Errorf("BasicSettings.Name = %q, want %q", doc.BasicSettings.Name, s.Basic.Name)
	}
	if len(doc.Posts) != 1 || len(doc.Sources) != 1 {
		t.Fatalf("posts/sources = %d/%d, want 1/1", len(doc.Posts), len(doc.Sources))
	}
}

func TestDehydrate_LastModifiedTimeIsFresh(t *testing.T) {
	s := assembledStudy()
	s.LastModifiedTime = 1000 // 保存値は使われない

	before := time.Now().Unix()
	doc, err := Dehydrate(s, nil, nil)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}
	after := time.Now().Unix()

	if *doc.LastModifiedTime < before || *doc.LastModifiedTime > after {
		t.Errorf("LastModifiedTime = %d, want within [%d, %d]", *doc.LastModifiedTime, before, after)
	}
}

func TestDehydrate_AuthorResolution(t *testing.T) {
	tests := []struct {
		name           string
		createdByID    string
		authorName     string
		wantAuthorID   string
		wantAuthorName string
	}{
		{"作成者あり", "user-id-123", "Dana Reed", "user-id-123", "Dana Reed"},
		{"作成者なし", "", "", "None", "None"},
		{"FKはあるがユーザー行が引けない", "user-id-gone", "", "user-id-gone", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := assembledStudy()
			s.CreatedByID = tt.createdByID
			s.AuthorName = tt.authorName

			doc, err := Dehydrate(s, nil, nil)
			if err != nil {
				t.Fatalf("Dehydrate() error = %v", err)
			}

			if doc.AuthorID != tt.wantAuthorID {
				t.Errorf("AuthorID = %q, want %q", doc.AuthorID, tt.wantAuthorID)
			}
			if doc.AuthorName != tt.wantAuthorName {
				t.Errorf("AuthorName = %q, want %q", doc.AuthorName, tt.wantAuthorName)
			}
		})
	}
}

func TestDehydrate_RenumbersDisplayIDs(t *testing.T) {
	s := assembledStudy()
	threads := []*PostThread{
		{Post: rowPost("post-uuid-z", s.ID)},
		{Post: rowPost("post-uuid-a", s.ID)},
		{Post: rowPost("post-uuid-m", s.ID)},
	}
	sources := []*model.Source{
		rowSource("source-uuid-x", s.ID),
		rowSource("source-uuid-b", s.ID),
	}

	doc, err := Dehydrate(s, threads, sources)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	// 表示IDは入力順にP1..Pn / S1..Snで採番される
	wantPosts := []string{"P1", "P2", "P3"}
	for i, post := range doc.Posts {
		if post.ID != wantPosts[i] {
			t.Errorf("Posts[%d].ID = %q, want %q", i, post.ID, wantPosts[i])
		}
	}
	wantSources := []string{"S1", "S2"}
	for i, source := range doc.Sources {
		if source.ID != wantSources[i] {
			t.Errorf("Sources[%d].ID = %q, want %q", i, source.ID, wantSources[i])
		}
	}
}

func TestDehydrate_SourceDocument(t *testing.T) {
	s := assembledStudy()
	source := rowSource("source-1", s.ID)

	doc, err := Dehydrate(s, nil, []*model.Source{source})
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	got := doc.Sources[0]

	if got.LinkedStudyID != s.ID {
		t.Errorf("LinkedStudyID = %q, want %q", got.LinkedStudyID, s.ID)
	}
	// file_nameは保存値がそのまま出力される
	if got.FileName != "S9" {
		t.Errorf("FileName = %q, want %q", got.FileName, "S9")
	}

	// スタイルの背景色は保存値（#ffffff）に関わらず固定定数になる
	if got.Style == nil || got.Style.BackgroundColor != "#8fd186" {
		t.Errorf("Style = %+v, want backgroundColor #8fd186", got.Style)
	}

	// 分布のmin/maxは保存値（5..9999）ではなくドメイン境界で上書きされる
	if got.Followers.Min != 0 || got.Followers.Max != 250 {
		t.Errorf("Followers bounds = [%d, %d], want [0, 250]", got.Followers.Min, got.Followers.Max)
	}
	if got.Credibility.Min != 0 || got.Credibility.Max != 100 {
		t.Errorf("Credibility bounds = [%d, %d], want [0, 100]", got.Credibility.Min, got.Credibility.Max)
	}
}

func TestDehydrate_SourceWithoutAvatar_OmitsAvatarAndStyle(t *testing.T) {
	s := assembledStudy()
	source := rowSource("source-1", s.ID)
	source.Avatar = nil

	doc, err := Dehydrate(s, nil, []*model.Source{source})
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	got := doc.Sources[0]
	if got.Avatar != nil {
		t.Errorf("Avatar = %+v, want nil", got.Avatar)
	}
	// アバターがない場合はスタイルも出力されない
	if got.Style != nil {
		t.Errorf("Style = %+v, want nil", got.Style)
	}
}

func TestDehydrate_SourceMaxPostsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		maxPosts int
		want     int
	}{
		{"正の値はそのまま", 5, 5},
		{"ゼロは無制限になる", 0, -1},
		{"負の値は無制限になる", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := assembledStudy()
			source := rowSource("source-1", s.ID)
			source.MaxPosts = tt.maxPosts

			doc, err := Dehydrate(s, nil, []*model.Source{source})
			if err != nil {
				t.Fatalf("Dehydrate() error = %v", err)
			}

			if *doc.Sources[0].MaxPosts != tt.want {
				t.Errorf("MaxPosts = %d, want %d", *doc.Sources[0].MaxPosts, tt.want)
			}
		})
	}
}

func TestDehydrate_PostContentExpansion(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		wantTyped bool
		wantValue string
	}{
		{"平文コンテンツ", "本文テキスト", false, "本文テキスト"},
		{"型付きコンテンツ", "type=png", true, "png"},
		{"引用符付きの型", "type='jpg'", true, "jpg"},
		{"空白混じりの型", "type= png ", true, "png"},
		{"空文字列", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := assembledStudy()
			post := rowPost("post-1", s.ID)
			post.Content = tt.stored

			doc, err := Dehydrate(s, []*PostThread{{Post: post}}, nil)
			if err != nil {
				t.Fatalf("Dehydrate() error = %v", err)
			}

			content := doc.Posts[0].Content
			if content.Typed != tt.wantTyped {
				t.Errorf("Typed = %v, want %v", content.Typed, tt.wantTyped)
			}
			if content.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", content.Value, tt.wantValue)
			}
		})
	}
}

func TestDehydrate_CommentLightView(t *testing.T) {
	s := assembledStudy()
	comment := rowComment("comment-1", "post-1")
	comment.Flag = model.Distribution{Mean: 9, StdDeviation: 9, SkewShape: 9, Min: 9, Max: 9}
	comment.Share = model.Distribution{Mean: 8, StdDeviation: 8, SkewShape: 8, Min: 8, Max: 8}

	threads := []*PostThread{
		{Post: rowPost("post-1", s.ID), Comments: []*model.Comment{comment}},
	}

	doc, err := Dehydrate(s, threads, nil)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	got := doc.Posts[0].Comments[0]
	if got.SourceName != comment.SourceName {
		t.Errorf("SourceName = %q, want %q", got.SourceName, comment.SourceName)
	}

	// 保存されているflag/shareは出力に含まれない（ライトビュー）
	if got.NumberOfReactions.Flag != nil {
		t.Errorf("Flag = %+v, want nil", got.NumberOfReactions.Flag)
	}
	if got.NumberOfReactions.Share != nil {
		t.Errorf("Share = %+v, want nil", got.NumberOfReactions.Share)
	}
	if got.NumberOfReactions.Like == nil || got.NumberOfReactions.Like.Mean != comment.Like.Mean {
		t.Errorf("Like = %+v, want mean %v", got.NumberOfReactions.Like, comment.Like.Mean)
	}
}

func TestDehydrate_MissingSettingsGroup_ReturnsDataIntegrityError(t *testing.T) {
	s := assembledStudy()
	s.UI = nil

	_, err := Dehydrate(s, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing settings group")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeDataIntegrity {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDataIntegrity)
	}
}

func TestDehydrate_CommentMissingRequiredFields_ReturnsDataIntegrityError(t *testing.T) {
	s := assembledStudy()
	comment := rowComment("comment-1", "post-1")
	comment.Message = ""

	threads := []*PostThread{
		{Post: rowPost("post-1", s.ID), Comments: []*model.Comment{comment}},
	}

	_, err := Dehydrate(s, threads, nil)
	if err == nil {
		t.Fatal("expected error for comment without message")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeDataIntegrity {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDataIntegrity)
	}
}

func TestDehydrate_EmptyStudy_OutputsEmptyArrays(t *testing.T) {
	s := assembledStudy()

	doc, err := Dehydrate(s, nil, nil)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	// 出力では常に空配列以上が埋められる（nilにならない）
	if doc.Posts == nil {
		t.Error("Posts should be an empty slice, not nil")
	}
	if doc.Sources == nil {
		t.Error("Sources should be an empty slice, not nil")
	}
}

func TestDehydrate_OutputPassesValidation(t *testing.T) {
	s := assembledStudy()
	threads := []*PostThread{
		{Post: rowPost("post-1", s.ID), Comments: []*model.Comment{rowComment("comment-1", "post-1")}},
	}
	sources := []*model.Source{rowSource("source-1", s.ID)}

	doc, err := Dehydrate(s, threads, sources)
	if err != nil {
		t.Fatalf("Dehydrate() error = %v", err)
	}

	// デハイドレーションの出力は常にスキーマ検証を通過する
	if err := ValidateDocument(doc); err != nil {
		t.Errorf("dehydrated document should validate: %v", err)
	}
}
