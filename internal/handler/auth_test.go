package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/zopper-dev/salesdost/backend/internal/config"
	"github.com/zopper-dev/salesdost/backend/internal/repository"
	"github.com/zopper-dev/salesdost/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.OTP.RatePerMinute = 5
	cfg.RabbitMQ.PublishTimeout = 5

	tokens, err := token.NewService("test-secret", "salesdost", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	h, err := NewHandler(cfg, repository.NewRepository(cfg, db), tokens, nil, nil, nil, memory.NewStore())
	require.NoError(t, err)
	h.RegisterRoutes()

	return h, mock
}

func expectUserByUsername(mock sqlmock.Sqlmock, username, passwordHash, role, state, metadata string) {
	rows := sqlmock.NewRows([]string{"id", "password_hash", "role", "validation_state", "metadata", "last_login_at", "created_at", "version"}).
		AddRow(int64(7), passwordHash, role, state, []byte(metadata), nil, time.Now(), int32(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs(username).
		WillReturnRows(rows)
}

func expectUserByID(mock sqlmock.Sqlmock, id int64, role, state, metadata string) {
	rows := sqlmock.NewRows([]string{"username", "password_hash", "role", "validation_state", "metadata", "last_login_at", "created_at", "version"}).
		AddRow("admin", "hash", role, state, []byte(metadata), nil, time.Now(), int32(1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(rows)
}

func expectRoleProfile(mock sqlmock.Sqlmock, userID int64) {
	rows := sqlmock.NewRows([]string{"id", "full_name", "phone", "email", "agency_name", "store_ids", "parent_manager_id", "created_at"}).
		AddRow(int64(1), "Amit Sharma", "9876543210", "admin@salesdost.example", "", []byte(`["STR-DEL-001"]`), nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM role_profiles WHERE user_id").
		WithArgs(userID).
		WillReturnRows(rows)
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestLoginSetsBothSessionCookies(t *testing.T) {
	h, mock := newTestHandler(t)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("pass12345"), bcrypt.MinCost)
	require.NoError(t, err)

	expectUserByUsername(mock, "admin", string(passwordHash), "ZOPPER_ADMIN", "approved", `{"isUatUser":false}`)
	expectRoleProfile(mock, 7)
	mock.ExpectExec("UPDATE users SET last_login_at").
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"pass12345"}`))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := rec.Result()
	access := cookieByName(resp, accessTokenCookie)
	refresh := cookieByName(resp, refreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	// the flattened profile never leaks the hash or the internal id
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), `"id"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h, mock := newTestHandler(t)

	// unknown username
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ghost","password":"whatever1"}`))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownUserBody := rec.Body.String()

	// known username, wrong password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	expectUserByUsername(mock, "admin", string(passwordHash), "ZOPPER_ADMIN", "approved", `{"isUatUser":false}`)

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"wrong-password"}`))
	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, unknownUserBody, rec.Body.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsPendingAccounts(t *testing.T) {
	h, mock := newTestHandler(t)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("pass12345"), bcrypt.MinCost)
	require.NoError(t, err)
	expectUserByUsername(mock, "newbie", string(passwordHash), "ABM", "pending", `{"isUatUser":false}`)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"newbie","password":"pass12345"}`))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyResolvesPrincipalFromAccessToken(t *testing.T) {
	h, mock := newTestHandler(t)

	access, accessExp, err := h.tokens.SignAccessToken(token.Claims{UserID: 7, Role: "ZOPPER_ADMIN"})
	require.NoError(t, err)

	expectUserByID(mock, 7, "ZOPPER_ADMIN", "approved", `{"isUatUser":false}`)
	expectRoleProfile(mock, 7)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(h.sessionCookie(accessTokenCookie, access, accessExp))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amit Sharma")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyFailsClosedForDeletedIdentity(t *testing.T) {
	h, mock := newTestHandler(t)

	// the token is perfectly valid, but the account it references is gone
	access, accessExp, err := h.tokens.SignAccessToken(token.Claims{UserID: 7, Role: "ZOPPER_ADMIN"})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(h.sessionCookie(accessTokenCookie, access, accessExp))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// both session cookies are cleared so the client logs out
	resp := rec.Result()
	accessCookie := cookieByName(resp, accessTokenCookie)
	require.NotNil(t, accessCookie)
	assert.Empty(t, accessCookie.Value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenReissuesAccessToken(t *testing.T) {
	h, mock := newTestHandler(t)

	refresh, refreshExp, err := h.tokens.SignRefreshToken(token.Claims{UserID: 7, Role: "ZOPPER_ADMIN"})
	require.NoError(t, err)

	expectUserByID(mock, 7, "ZOPPER_ADMIN", "approved", `{"isUatUser":false}`)
	expectRoleProfile(mock, 7)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.AddCookie(h.sessionCookie(refreshTokenCookie, refresh, refreshExp))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec.Result(), accessTokenCookie)
	require.NotNil(t, access)
	require.NotEmpty(t, access.Value)

	claims, err := h.tokens.Parse(access.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCapabilityGateRejectsWrongRole(t *testing.T) {
	h, mock := newTestHandler(t)

	access, accessExp, err := h.tokens.SignAccessToken(token.Claims{UserID: 7, Role: "ABM"})
	require.NoError(t, err)

	expectUserByID(mock, 7, "ABM", "approved", `{"isUatUser":false}`)
	expectRoleProfile(mock, 7)

	req := httptest.NewRequest(http.MethodGet, "/admin/campaigns", nil)
	req.AddCookie(h.sessionCookie(accessTokenCookie, access, accessExp))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestrictedTierAccountsAreDeniedByDefault(t *testing.T) {
	// restricted accounts pass the role check on all of these, but none of
	// the capabilities behind them is on the restricted-tier allowlist
	paths := []string{
		"/admin/campaigns",
		"/admin/sales-reports",
		"/admin/bulk-jobs/" + uuid.NewString(),
		"/admin/users/pending",
	}

	for _, path := range paths {
		h, mock := newTestHandler(t)

		access, accessExp, err := h.tokens.SignAccessToken(token.Claims{UserID: 7, Role: "ZOPPER_ADMIN"})
		require.NoError(t, err)

		expectUserByID(mock, 7, "ZOPPER_ADMIN", "approved", `{"isUatUser":true}`)
		expectRoleProfile(mock, 7)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(h.sessionCookie(accessTokenCookie, access, accessExp))
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, "path %s", path)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestRestrictedTierAccountsKeepAllowlistedEndpoints(t *testing.T) {
	h, mock := newTestHandler(t)

	access, accessExp, err := h.tokens.SignAccessToken(token.Claims{UserID: 7, Role: "ZOPPER_ADMIN"})
	require.NoError(t, err)

	expectUserByID(mock, 7, "ZOPPER_ADMIN", "approved", `{"isUatUser":true}`)
	expectRoleProfile(mock, 7)
	mock.ExpectQuery("SELECT (.+) FROM sales_reports WHERE date_of_sale").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sec_id", "store_id", "device_id", "plan_id", "plan_type", "plan_price",
			"imei", "date_of_sale", "incentive_earned", "paid_at", "campaign_active", "created_at",
		}))
	mock.ExpectQuery("SELECT (.+) FROM secs").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "phone", "full_name", "store_id", "photo_url", "birth_date",
			"marital_status", "bonus_eligible", "created_at",
		}))

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	req.AddCookie(h.sessionCookie(accessTokenCookie, access, accessExp))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnauthenticatedRequestGets401(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
