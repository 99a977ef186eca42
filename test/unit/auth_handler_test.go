package unit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	v1 "github.com/jobin-logidots/auth-service/internal/adapters/http/api/v1"
	"github.com/jobin-logidots/auth-service/internal/adapters/http/api/v1/handlers"
	authmw "github.com/jobin-logidots/auth-service/internal/adapters/http/middleware"
)

func newTestServer(t *testing.T) (*echo.Echo, *testDeps) {
	t.Helper()
	service, deps := newTestService(t)
	handler := handlers.NewAuthHandler(service)
	mw := authmw.NewAuthMiddleware(deps.codec)
	router := v1.NewRouter(handler, mw.Handler)

	e := echo.New()
	router.Register(e.Group("/api/v1"))
	return e, deps
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestAuthEndpointsScenario(t *testing.T) {
	e, _ := newTestServer(t)

	// Register alice.
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/email/register", "",
		`{"email":"alice@x.com","password":"secret1","firstName":"Alice","lastName":"Smith"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("register: %d (%s)", rec.Code, rec.Body.String())
	}

	// Same email, different case: conflict.
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/register", "",
		`{"email":"Alice@X.com","password":"secret1","firstName":"Alice","lastName":"Smith"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", rec.Code)
	}

	// Login: token pair plus stripped user.
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "",
		`{"email":"alice@x.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	for _, key := range []string{"token", "refreshToken", "tokenExpires", "user"} {
		if body[key] == nil {
			t.Fatalf("login response missing %q: %v", key, body)
		}
	}
	user := body["user"].(map[string]interface{})
	for _, secret := range []string{"password", "previousPassword", "Password", "PreviousPassword"} {
		if _, ok := user[secret]; ok {
			t.Fatalf("credential field %q leaked: %v", secret, user)
		}
	}
	token := body["token"].(string)
	refreshToken := body["refreshToken"].(string)

	// Refresh rotates; the replayed token is rejected.
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/refresh", refreshToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d (%s)", rec.Code, rec.Body.String())
	}
	rotated := decodeBody(t, rec)
	if rotated["refreshToken"] == refreshToken {
		t.Fatal("refresh token not rotated")
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/refresh", refreshToken, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh: %d", rec.Code)
	}

	// Profile.
	rec = doJSON(e, http.MethodGet, "/api/v1/auth/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d (%s)", rec.Code, rec.Body.String())
	}
	profile := decodeBody(t, rec)
	if profile["email"] != "alice@x.com" || profile["provider"] != "email" {
		t.Fatalf("unexpected profile: %v", profile)
	}

	// Password change without the old password is a validation failure.
	rec = doJSON(e, http.MethodPatch, "/api/v1/auth/me", token, `{"password":"changed1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("password change without old password: %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPatch, "/api/v1/auth/me", token, `{"password":"changed1","oldPassword":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("password change: %d (%s)", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "",
		`{"email":"alice@x.com","password":"secret1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("old password after change: %d", rec.Code)
	}

	// Delete profile, then the credentials are dead.
	rec = doJSON(e, http.MethodDelete, "/api/v1/auth/me", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete me: %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "",
		`{"email":"alice@x.com","password":"changed1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("login after delete: %d", rec.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "", `{"email":"not-an-email","password":"x"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed email: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	if errObj["code"] != "validation_failed" {
		t.Fatalf("unexpected error code: %v", errObj)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e, _ := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPatch, "/api/v1/auth/me"},
		{http.MethodDelete, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/auth/logout"},
	} {
		rec := doJSON(e, tc.method, tc.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: %d", tc.method, tc.path, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/auth/me", "garbage-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", rec.Code)
	}
}

func TestRefreshSecretIsolation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/email/register", "",
		`{"email":"bob@x.com","password":"secret1","firstName":"Bob","lastName":"Jones"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("register: %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "",
		`{"email":"bob@x.com","password":"secret1"}`)
	body := decodeBody(t, rec)
	token := body["token"].(string)
	refreshToken := body["refreshToken"].(string)

	// A refresh token is not an access credential, and vice versa.
	if rec := doJSON(e, http.MethodGet, "/api/v1/auth/me", refreshToken, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted as access token: %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/api/v1/auth/refresh", token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("access token accepted as refresh token: %d", rec.Code)
	}
}

func TestForgotPasswordEndpoint(t *testing.T) {
	e, deps := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/email/register", "",
		`{"email":"carol@x.com","password":"secret1","firstName":"Carol","lastName":"King"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("register: %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/auth/forgot/password", "", `{"email":"carol@x.com"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("forgot: %d (%s)", rec.Code, rec.Body.String())
	}
	waitMail(t, deps.mailer.forgots)

	rec = doJSON(e, http.MethodPost, "/api/v1/auth/forgot/password", "", `{"email":"unknown@x.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("forgot unknown: %d", rec.Code)
	}

	hash := deps.forgot.latestHash()
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/reset/password", "",
		`{"hash":"`+hash+`","password":"reset-secret"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reset: %d (%s)", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/email/login", "",
		`{"email":"carol@x.com","password":"reset-secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login after reset: %d", rec.Code)
	}
}
