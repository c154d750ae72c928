package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/models"
)

type fakeSessions struct {
	sessions map[string]*models.Session
	users    map[uuid.UUID]*models.User
}

func (f *fakeSessions) GetSessionByToken(_ context.Context, token string) (*models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (f *fakeSessions) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type fakeTokens struct {
	valid map[string]uuid.UUID
}

func (f *fakeTokens) Validate(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := f.valid[token]
	if !ok {
		return uuid.Nil, errors.New("invalid token")
	}
	return id, nil
}

func (f *fakeTokens) Prefix() string { return "olm_" }

func newAuthRouter(sessions *fakeSessions, tokens *fakeTokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(sessions, tokens, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	return r
}

func seededFakes() (*fakeSessions, *fakeTokens, *models.User) {
	user := &models.User{ID: uuid.New(), Email: "jane@co.com", Role: models.RoleUser}
	sessions := &fakeSessions{
		sessions: map[string]*models.Session{
			"sess-1": {ID: uuid.New(), Token: "sess-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)},
		},
		users: map[uuid.UUID]*models.User{user.ID: user},
	}
	tokens := &fakeTokens{valid: map[string]uuid.UUID{"olm_abc123": user.ID}}
	return sessions, tokens, user
}

func TestAuthenticateCredentialKinds(t *testing.T) {
	sessions, tokens, _ := seededFakes()
	r := newAuthRouter(sessions, tokens)

	tests := []struct {
		name    string
		prepare func(req *http.Request)
		want    int
	}{
		{"no credential", func(*http.Request) {}, http.StatusUnauthorized},
		{"session cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess-1"})
		}, http.StatusOK},
		{"session bearer", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer sess-1")
		}, http.StatusOK},
		{"raw header token", func(req *http.Request) {
			req.Header.Set("Authorization", "olm_abc123")
		}, http.StatusOK},
		{"bearer api token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer olm_abc123")
		}, http.StatusOK},
		{"unknown session", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "nope"})
		}, http.StatusUnauthorized},
		{"unknown api token", func(req *http.Request) {
			req.Header.Set("Authorization", "olm_wrong")
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAuthenticateBanMatrix(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		banned  bool
		expires *time.Time
		want    int
	}{
		{"not banned", false, nil, http.StatusOK},
		{"permanent ban", true, nil, http.StatusForbidden},
		{"ban still running", true, &future, http.StatusForbidden},
		{"ban expired", true, &past, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, tokens, user := seededFakes()
			user.Banned = tt.banned
			user.BanExpires = tt.expires
			r := newAuthRouter(sessions, tokens)

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess-1"})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthenticateSetsSessionOnlyForCookieLogins(t *testing.T) {
	sessions, tokens, _ := seededFakes()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(sessions, tokens, zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) {
		if CurrentSession(c) != nil {
			c.String(http.StatusOK, "session")
			return
		}
		c.String(http.StatusOK, "token")
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "session" {
		t.Errorf("cookie login session = %q, want session", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer olm_abc123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "token" {
		t.Errorf("api token login session = %q, want token", w.Body.String())
	}
}
