package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/haddriax/MisinformationGame-API/internal/model"
)

// TestRouterIntegration_PublicAndAdminGroups は
// 公開グループ（IPレート制限）と管理グループ（Session -> ユーザー別レート制限）が
// chi.Router上で正しく共存することを検証する。
func TestRouterIntegration_PublicAndAdminGroups(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "router-test-session" {
				return &model.Session{
					ID:        "router-test-session",
					UserID:    "user-router-test",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}

	rl := NewRateLimiter(RateLimiterConfig{
		AdminRate:       100,
		AdminBurst:      200,
		PublicRate:      100,
		PublicBurst:     200,
		CleanupInterval: 1 * time.Minute,
	})
	defer rl.Stop()

	r := chi.NewRouter()

	// 公開ルートグループ（参加者向け）
	r.Group(func(r chi.Router) {
		r.Use(rl.PublicMiddleware())

		r.Get("/study/get/{study_id}", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": chi.URLParam(r, "study_id")})
		})
	})

	// 管理ルートグループ（認証必須）
	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(repo))
		r.Use(rl.AdminMiddleware())

		r.Post("/study/upload", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
		})
	})

	// テスト1: 公開ルートは認証なしで通る
	t.Run("public_route_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/study/get/study-1", nil)
		req.RemoteAddr = "203.0.113.50:40000"
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})

	// テスト2: 管理ルートは認証ありで通り、ユーザーIDが注入される
	t.Run("admin_route_with_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/study/upload", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		var body map[string]string
		json.NewDecoder(w.Result().Body).Decode(&body)
		if body["user_id"] != "user-router-test" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-router-test")
		}
	})

	// テスト3: 管理ルートは認証なしで401
	t.Run("admin_route_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/study/upload", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト4: 管理ルートは無効なセッションで401
	t.Run("admin_route_invalid_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/study/upload", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "unknown-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})
}

// TestRouterIntegration_PublicRateLimitPerIP は
// 公開グループのレート制限がIP単位で適用されることをルーター経由で検証する。
func TestRouterIntegration_PublicRateLimitPerIP(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		AdminRate:       100,
		AdminBurst:      200,
		PublicRate:      1,
		PublicBurst:     1,
		CleanupInterval: 1 * time.Minute,
	})
	defer rl.Stop()

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(rl.PublicMiddleware())
		r.Post("/result/upload", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// 同一IPの2回目は429
	req1 := httptest.NewRequest(http.MethodPost, "/result/upload", nil)
	req1.RemoteAddr = "203.0.113.60:40000"
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req1)

	if w1.Result().StatusCode != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", w1.Result().StatusCode, http.StatusOK)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/result/upload", nil)
	req2.RemoteAddr = "203.0.113.60:40001"
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// 別IPは通る
	req3 := httptest.NewRequest(http.MethodPost, "/result/upload", nil)
	req3.RemoteAddr = "203.0.113.61:40000"
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req3)

	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP: status = %d, want %d", w3.Result().StatusCode, http.StatusOK)
	}
}
