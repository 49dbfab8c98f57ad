package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/pkg/helpers"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.NotFound("USER_NOT_FOUND", "User not found"), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", domain.AlreadyExists("EMAIL_TAKEN", domain.MsgEmailTaken), http.StatusConflict, "ALREADY_EXISTS"},
		{"bad credentials", domain.Unauthorized("INVALID_CREDENTIALS", "Incorrect username or password"), http.StatusBadRequest, "INVALID_CREDENTIALS"},
		{"no token", domain.Unauthenticated("UNAUTHENTICATED", "Must log in"), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"forbidden", domain.Forbidden("FORBIDDEN_OWNER", "Access denied"), http.StatusForbidden, "FORBIDDEN"},
		{"bad input", oops.Code("INVALID_ID").Wrap(ErrBadRequest), http.StatusBadRequest, "INVALID_INPUT"},
		{"rejected by service", domain.Invalid("PASSWORD_TOO_LONG", "Password too long"), http.StatusBadRequest, "INVALID_INPUT"},
		{"wrapped twice", oops.Code("OUTER").Wrap(domain.NotFound("INNER", "x")), http.StatusNotFound, "NOT_FOUND"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusOf(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestFailHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(c, oops.Code("DB_DOWN").Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Len(t, c.Errors, 1)
}

type stubTokens struct {
	ids map[string]entity.Identity
}

func (s stubTokens) Issue(entity.Identity) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not used")
}

func (s stubTokens) Verify(tok string) (entity.Identity, error) {
	if id, ok := s.ids[tok]; ok {
		return id, nil
	}
	return entity.Identity{}, domain.Unauthenticated("TOKEN_INVALID", "Invalid token")
}

func newGuardedEngine() *gin.Engine {
	tokens := stubTokens{ids: map[string]entity.Identity{
		"ana":  {ID: 2, Kind: entity.ActorUser, Roles: entity.NewRoleSet(entity.RoleUser)},
		"casa": {ID: 2, Kind: entity.ActorHost, Roles: entity.NewRoleSet(entity.RoleHost)},
	}}
	r := gin.New()
	r.Use(RequestID(), Identify(tokens))
	r.PUT("/users/:id", Authorize(application.PolicyUpdateUser, OwnerFromParam("id")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": IdentityFrom(c).ID})
	})
	return r
}

func TestIdentifyAndAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "bearer owner", path: "/users/2", header: "Bearer ana", wantStatus: http.StatusOK},
		{name: "lowercase scheme", path: "/users/2", header: "bearer ana", wantStatus: http.StatusOK},
		{name: "cookie owner", path: "/users/2", cookie: "ana", wantStatus: http.StatusOK},
		{name: "anonymous", path: "/users/2", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", path: "/users/2", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme ignored", path: "/users/2", header: "Basic ana", wantStatus: http.StatusUnauthorized},
		{name: "not the owner", path: "/users/3", header: "Bearer ana", wantStatus: http.StatusForbidden},
		{name: "host kind", path: "/users/2", header: "Bearer casa", wantStatus: http.StatusForbidden},
		{name: "bad id", path: "/users/zero", header: "Bearer ana", wantStatus: http.StatusBadRequest},
	}
	engine := newGuardedEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	engine := newGuardedEngine()

	t.Run("reuses a valid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/users/2", nil)
		req.Header.Set(HeaderRequestID, "4f6d3c1e-8b1f-4c8e-9a57-0c4c1f8f6b1a")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "4f6d3c1e-8b1f-4c8e-9a57-0c4c1f8f6b1a", rec.Header().Get(HeaderRequestID))
		var body struct {
			RequestID string `json:"request_id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "4f6d3c1e-8b1f-4c8e-9a57-0c4c1f8f6b1a", body.RequestID)
	})

	t.Run("replaces junk", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/users/2", nil)
		req.Header.Set(HeaderRequestID, "<script>")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		got := rec.Header().Get(HeaderRequestID)
		assert.NotEqual(t, "<script>", got)
		assert.Len(t, got, 36)
	})
}

// fakeRateStore counts script runs per key in memory.
type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	fail   bool
}

func (f *fakeRateStore) run(ctx context.Context, keys []string) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.fail {
		cmd.SetErr(errors.New("redis down"))
		return cmd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[keys[0]]++
	cmd.SetVal(f.counts[keys[0]])
	return cmd
}

func (f *fakeRateStore) Eval(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeRateStore) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeRateStore) EvalRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeRateStore) EvalShaRO(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.run(ctx, keys)
}

func (f *fakeRateStore) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	cmd := redis.NewBoolSliceCmd(ctx)
	cmd.SetVal(make([]bool, len(hashes)))
	return cmd
}

func (f *fakeRateStore) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("sha")
	return cmd
}

func (f *fakeRateStore) PTTL(ctx context.Context, _ string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Millisecond)
	cmd.SetVal(30 * time.Second)
	return cmd
}

func newLimitedEngine(store RateStore, max int) *gin.Engine {
	r := gin.New()
	r.Use(RealIP(false))
	r.POST("/users/login", RateLimit(store, max, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func hit(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects past the limit", func(t *testing.T) {
		store := &fakeRateStore{counts: map[string]int64{}}
		engine := newLimitedEngine(store, 2)

		assert.Equal(t, http.StatusNoContent, hit(engine).Code)
		assert.Equal(t, http.StatusNoContent, hit(engine).Code)
		rec := hit(engine)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "30", rec.Header().Get("Retry-After"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Contains(t, store.counts, "rl:path:/users/login:ip:203.0.113.7")
	})

	t.Run("fails open when redis errors", func(t *testing.T) {
		engine := newLimitedEngine(&fakeRateStore{fail: true}, 1)
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusNoContent, hit(engine).Code)
		}
	})

	t.Run("nil store disables limiting", func(t *testing.T) {
		engine := newLimitedEngine(nil, 1)
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusNoContent, hit(engine).Code)
		}
	})
}

func TestClientIPTrustsProxyOnlyWhenAsked(t *testing.T) {
	for _, trust := range []bool{false, true} {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "198.51.100.1:1234"
		c.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

		got := clientIP(c, trust)
		if trust {
			assert.Equal(t, "203.0.113.9", got)
		} else {
			assert.NotEqual(t, "203.0.113.9", got)
		}
	}
}
