package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/havirkesht/backend/internal/auth"
	"github.com/havirkesht/backend/internal/db"
	"github.com/havirkesht/backend/internal/events"
	"github.com/havirkesht/backend/internal/hash"
	"github.com/havirkesht/backend/internal/middleware"
	"github.com/havirkesht/backend/internal/models"
	"github.com/havirkesht/backend/internal/repo"
	"github.com/havirkesht/backend/internal/service"
	"github.com/havirkesht/backend/internal/tokens"
)

type testServer struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	codec  *tokens.Codec
	hasher *hash.Hasher
	ready  error
}

func newTestServer(t *testing.T, bypass bool) *testServer {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	require.NoError(t, r.EnsureRoles(ctx, auth.SeedRoles()))

	codec, err := tokens.NewCodec(tokens.CodecConfig{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	gate, err := auth.NewGate(auth.GateConfig{Bypass: bypass, Codec: codec, Revocations: r, Users: r})
	require.NoError(t, err)

	hasher := hash.New(bcrypt.MinCost)
	ts := &testServer{e: echo.New(), repo: r, codec: codec, hasher: hasher}

	Register(ts.e, &Deps{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Gate:   gate,
		Auth: &AuthHTTP{Svc: &service.AuthService{
			Users: r, Revocations: r, Codec: codec, Hasher: hasher, Events: events.Nop{},
		}},
		Users:     &UsersHTTP{Svc: &service.UserService{Users: r, Hasher: hasher, Events: events.Nop{}}},
		Provinces: &ProvincesHTTP{Svc: &service.ProvinceService{Provinces: r}},
		RateLimit: middleware.RateLimitConfig{PerSecond: 1000, Burst: 1000},
		Ready:     func(context.Context) error { return ts.ready },
	})
	return ts
}

func (ts *testServer) seedUser(t *testing.T, id uint, username, password string, role uint) {
	t.Helper()
	digest, err := ts.hasher.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, ts.repo.CreateUser(context.Background(), &models.User{
		ID: id, Username: username, PasswordHash: digest, RoleID: role,
	}))
}

type call struct {
	method, path, token string
	form                url.Values
	json                string
}

func (ts *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	contentType := ""
	switch {
	case c.form != nil:
		body = strings.NewReader(c.form.Encode())
		contentType = echo.MIMEApplicationForm
	case c.json != "":
		body = strings.NewReader(c.json)
		contentType = echo.MIMEApplicationJSON
	}

	req := httptest.NewRequest(c.method, c.path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, username, password string) service.TokenPair {
	t.Helper()
	rec := ts.do(t, call{method: http.MethodPost, path: "/token", form: url.Values{
		"username": {username}, "password": {password},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)

	assert.Equal(t, http.StatusOK, ts.do(t, call{method: http.MethodGet, path: "/health/live"}).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, call{method: http.MethodGet, path: "/health/ready"}).Code)

	ts.ready = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, call{method: http.MethodGet, path: "/health/ready"}).Code)

	rec := ts.do(t, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "havirkesht_http_requests_total")
}

func TestLoginRefreshLogout_Amir(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 7, "amir", "passw0rd", auth.RoleUser)

	first := ts.login(t, "amir", "passw0rd")
	assert.Equal(t, "bearer", first.TokenType)

	rec := ts.do(t, call{method: http.MethodPost, path: "/refresh-token?refresh_token=" + url.QueryEscape(first.RefreshToken)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := decode[service.TokenPair](t, rec)

	rec = ts.do(t, call{method: http.MethodGet, path: "/users/7", token: second.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "amir", decode[map[string]any](t, rec)["username"])

	rec = ts.do(t, call{method: http.MethodPost, path: "/logout?access_token=" + url.QueryEscape(second.AccessToken)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode[map[string]string](t, rec)["message"])

	rec = ts.do(t, call{method: http.MethodGet, path: "/users/7", token: second.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", decode[map[string]string](t, rec)["message"])
}

func TestLogin_Errors(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 0, "amir", "passw0rd", auth.RoleUser)

	rec := ts.do(t, call{method: http.MethodPost, path: "/token", form: url.Values{"username": {"amir"}, "password": {"nope"}}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	u, err := ts.repo.FindUserByUsername(context.Background(), "amir")
	require.NoError(t, err)
	u.Disabled = true
	require.NoError(t, ts.repo.UpdateUser(context.Background(), u))

	rec = ts.do(t, call{method: http.MethodPost, path: "/token", form: url.Values{"username": {"amir"}, "password": {"passw0rd"}}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/token", form: url.Values{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_Errors(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 0, "amir", "passw0rd", auth.RoleUser)
	pair := ts.login(t, "amir", "passw0rd")

	rec := ts.do(t, call{method: http.MethodPost, path: "/refresh-token?refresh_token=" + url.QueryEscape(pair.AccessToken)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/refresh-token?revoke_old=maybe&refresh_token=x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/refresh-token?revoke_old=true&refresh_token=" + url.QueryEscape(pair.RefreshToken)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/refresh-token?refresh_token=" + url.QueryEscape(pair.RefreshToken)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", decode[map[string]string](t, rec)["message"])
}

func TestLogout_RequiresAToken(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, call{method: http.MethodPost, path: "/logout"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 0, "amir", "old-pass", auth.RoleUser)
	pair := ts.login(t, "amir", "old-pass")

	rec := ts.do(t, call{method: http.MethodPost, path: "/changepassword", token: pair.AccessToken,
		json: `{"old_password":"wrong","new_password":"new-pass"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Old password is incorrect", decode[map[string]string](t, rec)["message"])

	rec = ts.do(t, call{method: http.MethodPost, path: "/changepassword", token: pair.AccessToken,
		form: url.Values{"old_password": {"old-pass"}, "new_password": {strings.Repeat("x", 73)}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/changepassword", token: pair.AccessToken,
		json: `{"old_password":"old-pass","new_password":"new-pass"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ts.login(t, "amir", "new-pass")

	rec = ts.do(t, call{method: http.MethodPost, path: "/changepassword",
		json: `{"old_password":"a","new_password":"b"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword_BypassedHasNoIdentity(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, call{method: http.MethodPost, path: "/changepassword",
		json: `{"old_password":"a","new_password":"b"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_AdminFlow(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 1, "root", "root-pass", auth.RoleAdmin)
	ts.seedUser(t, 7, "amir", "passw0rd", auth.RoleUser)

	admin := ts.login(t, "root", "root-pass").AccessToken
	user := ts.login(t, "amir", "passw0rd").AccessToken

	body := `{"username":"sara","password":"pw-1","fullName":"Sara K","email":"s@example.com","phone_number":"0912","role_id":2,"disabled":false}`

	rec := ts.do(t, call{method: http.MethodPost, path: "/users/admin/", token: user, json: body})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/users/admin/", token: admin, json: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "User created successfully", decode[string](t, rec))

	rec = ts.do(t, call{method: http.MethodPost, path: "/users/admin", token: admin, json: body})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/users/admin", token: admin,
		json: `{"username":"reza","password":"pw","role_id":9}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sara, err := ts.repo.FindUserByUsername(context.Background(), "sara")
	require.NoError(t, err)
	assert.Equal(t, "Sara K", sara.FullName)

	path := "/users/" + jsonNumber(sara.ID)
	rec = ts.do(t, call{method: http.MethodPut, path: path, token: user,
		json: `{"username":"sara","password":"pw-2","fullname":"S","email":"","phone_number":"","role_id":2,"disabled":true}`})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, call{method: http.MethodPut, path: path, token: admin,
		json: `{"username":"sara","password":"pw-2","fullname":"S","email":"","phone_number":"","role_id":2,"disabled":true}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[map[string]any](t, rec)
	assert.Equal(t, true, out["disabled"])
	assert.NotContains(t, out, "password")

	rec = ts.do(t, call{method: http.MethodPost, path: "/token", form: url.Values{"username": {"sara"}, "password": {"pw-2"}}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, call{method: http.MethodGet, path: "/users/999", token: user})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, call{method: http.MethodGet, path: "/users/abc", token: user})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_List(t *testing.T) {
	ts := newTestServer(t, false)
	for i, name := range []string{"alpha", "bravo", "charlie"} {
		ts.seedUser(t, uint(i+1), name, "pw", auth.RoleUser)
	}
	tok := ts.login(t, "alpha", "pw").AccessToken

	rec := ts.do(t, call{method: http.MethodGet, path: "/users/?size=2&sort_by=username&sort_order=desc", token: tok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Total int64            `json:"total"`
		Size  int              `json:"size"`
		Pages int              `json:"pages"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "charlie", page.Items[0]["username"])

	rec = ts.do(t, call{method: http.MethodGet, path: "/users?sort_order=desc", token: tok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page.Items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 3)
	assert.EqualValues(t, 3, page.Items[0]["id"])
	assert.Equal(t, "charlie", page.Items[0]["username"])

	for _, q := range []string{"size=101", "page=0", "sort_by=password", "sort_order=up", "size=abc"} {
		rec = ts.do(t, call{method: http.MethodGet, path: "/users?" + q, token: tok})
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = ts.do(t, call{method: http.MethodGet, path: "/users"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProvinces(t *testing.T) {
	ts := newTestServer(t, false)
	ts.seedUser(t, 0, "amir", "passw0rd", auth.RoleUser)
	tok := ts.login(t, "amir", "passw0rd").AccessToken

	for _, name := range []string{"Tehran", "Fars"} {
		rec := ts.do(t, call{method: http.MethodPost, path: "/province/", token: tok, json: `{"province":"` + name + `"}`})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, name, decode[map[string]string](t, rec)["province"])
	}

	rec := ts.do(t, call{method: http.MethodPost, path: "/province", token: tok, json: `{"province":"Fars"}`})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/province", token: tok, json: `{"province":"  "}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, call{method: http.MethodGet, path: "/province", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	items := list["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Fars", items[0].(map[string]any)["province"])

	rec = ts.do(t, call{method: http.MethodDelete, path: "/province/Fars", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Province deleted successfully", decode[map[string]string](t, rec)["message"])

	rec = ts.do(t, call{method: http.MethodDelete, path: "/province/Fars", token: tok})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, call{method: http.MethodGet, path: "/province"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBypass_AdmitsEverything(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, call{method: http.MethodPost, path: "/province", json: `{"province":"Qom"}`})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, call{method: http.MethodPost, path: "/users/admin", token: "garbage",
		json: `{"username":"sara","password":"pw","role_id":2}`})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, call{method: http.MethodGet, path: "/users"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
