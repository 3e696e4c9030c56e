package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"wardrobe-be/internal/user"
	"wardrobe-be/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func TestRequireAuth(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ann@example.com"}

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := utils.GetUserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, u.ID, id)
		assert.Equal(t, "good", utils.GetTokenFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	t.Run("MissingToken", func(t *testing.T) {
		authn := new(MockAuthenticator)
		w := httptest.NewRecorder()

		RequireAuth(authn)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "please authenticate")
		authn.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Bearer", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "good").Return(u, nil)

		req := httptest.NewRequest(http.MethodGet, "/order", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()

		RequireAuth(authn)(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cookie", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "good").Return(u, nil)

		req := httptest.NewRequest(http.MethodGet, "/order", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})
		w := httptest.NewRecorder()

		RequireAuth(authn)(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "revoked").Return(nil, user.ErrUnauthorized)

		req := httptest.NewRequest(http.MethodGet, "/order", nil)
		req.Header.Set("Authorization", "Bearer revoked")
		w := httptest.NewRecorder()

		RequireAuth(authn)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		authn := new(MockAuthenticator)
		authn.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("pq: too many connections"))

		req := httptest.NewRequest(http.MethodGet, "/order", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()

		RequireAuth(authn)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	hit := func(h http.Handler, path, addr string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("StrictTier", func(t *testing.T) {
		h := NewRateLimiter("/users/login").Middleware(ok)

		for i := 0; i < burstStrict; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/users/login", "10.0.0.1:5000"))
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "/users/login", "10.0.0.1:5000"))

		// other clients and other tiers keep their own buckets
		assert.Equal(t, http.StatusOK, hit(h, "/users/login", "10.0.0.2:5000"))
		assert.Equal(t, http.StatusOK, hit(h, "/garment", "10.0.0.1:5000"))
	})

	t.Run("GeneralTier", func(t *testing.T) {
		h := NewRateLimiter().Middleware(ok)

		for i := 0; i < burstGeneral; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/garment", "10.0.0.3:1"))
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "/garment", "10.0.0.3:1"))
	})

	t.Run("DeviceHeaderDoesNotResetStrictBucket", func(t *testing.T) {
		h := NewRateLimiter("/users/login").Middleware(ok)

		allowed := 0
		for i := 0; i < 50; i++ {
			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			req.RemoteAddr = "10.0.0.9:4000"
			req.Header.Set("X-Device-ID", strconv.Itoa(i))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code == http.StatusOK {
				allowed++
			}
		}
		assert.Equal(t, burstStrict, allowed)
	})

	t.Run("ForwardedHeaderIgnored", func(t *testing.T) {
		h := NewRateLimiter("/users/login").Middleware(ok)

		allowed := 0
		for i := 0; i < 20; i++ {
			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			req.RemoteAddr = "10.0.0.10:4000"
			req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code == http.StatusOK {
				allowed++
			}
		}
		assert.Equal(t, burstStrict, allowed)
	})

	t.Run("PerUser", func(t *testing.T) {
		l := NewRateLimiter()
		h := l.PerUser(ok)
		id := uuid.New()

		for i := 0; i < burstGeneral; i++ {
			req := httptest.NewRequest(http.MethodGet, "/garment", nil)
			req.RemoteAddr = "198.51.100." + strconv.Itoa(i) + ":1"
			req = req.WithContext(utils.SetUserContext(req.Context(), id, "tok"))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/garment", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), id, "tok"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		anon := httptest.NewRecorder()
		h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/garment", nil))
		assert.Equal(t, http.StatusOK, anon.Code)
	})

	t.Run("Sweep", func(t *testing.T) {
		l := NewRateLimiter()
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		l.get("ip:a:general", limitGeneral, burstGeneral)
		now = now.Add(visitorTTL + time.Second)
		l.get("ip:b:general", limitGeneral, burstGeneral)
		l.Sweep()

		assert.Len(t, l.visitors, 1)
		assert.Contains(t, l.visitors, "ip:b:general")
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Preflight", func(t *testing.T) {
		h := CORS(DefaultCORSOptions("http://localhost:5173"))(next)
		req := httptest.NewRequest(http.MethodOptions, "/garment", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("Wildcard", func(t *testing.T) {
		h := CORS(DefaultCORSOptions("*"))(next)
		req := httptest.NewRequest(http.MethodGet, "/garment", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("UnknownOrigin", func(t *testing.T) {
		h := CORS(DefaultCORSOptions("https://a.example.com, https://b.example.com"))(next)
		req := httptest.NewRequest(http.MethodGet, "/garment", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
