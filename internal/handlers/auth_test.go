package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitcenter/internal/models"
	"fitcenter/internal/services"
	"fitcenter/internal/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestEnv(env string) (*AuthHandler, *fakeAccountRepo, *sessions.Store) {
	accounts := newFakeAccountRepo()
	store := sessions.NewStore(100, time.Hour)
	authSvc := services.NewAuthService(accounts)
	h := NewAuthHandler(authSvc, store, "test-secret", 15*time.Minute, time.Hour, env)
	return h, accounts, store
}

func cookieByName(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsSessionCookieAndToken(t *testing.T) {
	h, accounts, _ := newAuthTestEnv("dev")
	seedMember(t, accounts, "ivanov@example.com", "пароль123")

	rec := postJSON(h.Login, map[string]string{
		"email": "ivanov@example.com", "password": "пароль123", "userType": "member",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ivanov@example.com", user["email"])

	c := cookieByName(rec.Result(), SessionCookie)
	require.NotNil(t, c, "cookie session_id не выставлена")
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure, "вне prod кука не Secure")
}

func TestLogin_WrongPassword(t *testing.T) {
	h, accounts, _ := newAuthTestEnv("dev")
	seedMember(t, accounts, "ivanov@example.com", "пароль123")

	rec := postJSON(h.Login, map[string]string{
		"email": "ivanov@example.com", "password": "не-тот", "userType": "member",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Nil(t, cookieByName(rec.Result(), SessionCookie))
}

func TestSession_NoCookie(t *testing.T) {
	h, _, _ := newAuthTestEnv("dev")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Session(rec, req)

	// Отсутствие сессии — не транспортная ошибка
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Нет сессии", body["error"])
}

func TestSession_ByCookie(t *testing.T) {
	h, _, store := newAuthTestEnv("dev")
	session := store.Create(models.SessionUser{ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com", FullName: "Иван Иванов", Role: "member"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Session(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(7), user["id"])
}

func TestSession_DebugCookie(t *testing.T) {
	// Вне prod debug-кука работает
	h, _, store := newAuthTestEnv("dev")
	session := store.Create(models.SessionUser{ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieDebug, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Session(rec, req)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	// В prod — игнорируется
	hProd, _, prodStore := newAuthTestEnv("prod")
	prodSession := prodStore.Create(models.SessionUser{ID: 8, UserType: models.UserTypeMember, Email: "petrov@example.com"})

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieDebug, Value: prodSession.ID})
	rec = httptest.NewRecorder()
	hProd.Session(rec, req)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestLogout_AlwaysClearsCookies(t *testing.T) {
	h, _, _ := newAuthTestEnv("dev")

	// Логаут без сессии — всё равно 200 и чистка всех кук
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	for _, name := range []string{SessionCookie, SessionCookieDebug, LegacyAuthCookie} {
		c := cookieByName(rec.Result(), name)
		require.NotNil(t, c, "cookie %s не очищена", name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0, "cookie %s должна протухать", name)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	h, _, store := newAuthTestEnv("dev")
	session := store.Create(models.SessionUser{ID: 7, UserType: models.UserTypeMember, Email: "ivanov@example.com"})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	if _, ok := store.Get(session.ID); ok {
		t.Fatal("сессия должна быть удалена после логаута")
	}
}

func TestRegister_ThenLogin(t *testing.T) {
	h, _, _ := newAuthTestEnv("dev")

	rec := postJSON(h.Register, map[string]string{
		"email": "Petrov@Example.com", "fullName": "Пётр Петров", "password": "пароль123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Login, map[string]string{
		"email": "petrov@example.com", "password": "пароль123", "userType": "member",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
