package landscaping

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName   = "admin_session"
	credentialKey = "credential"
	bearerPrefix  = "Bearer "
)

// bearerToken returns everything after "Bearer " in the Authorization header.
// The value is not trimmed: it must equal the secret byte for byte.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	return h[len(bearerPrefix):], true
}

// credential returns the bearer header value or, when the header is absent,
// the secret held in the admin session cookie.
func credential(c echo.Context) string {
	if token, ok := bearerToken(c.Request()); ok {
		return token
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	v, _ := sess.Values[credentialKey].(string)
	return v
}

// checkSecret compares got against the configured admin secret in constant
// time. An empty secret never matches.
func (a *App) checkSecret(got string) bool {
	want := a.Config.AdminPassword
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// IsAdmin reports whether the request carries the admin secret.
func (a *App) IsAdmin(c echo.Context) bool {
	return a.checkSecret(credential(c))
}

// requireAdmin rejects requests without the admin secret before the handler
// runs.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.IsAdmin(c) {
			return apiError(c, ErrUnauthorized)
		}
		return next(c)
	}
}

// newSessionStore returns an encrypted cookie store. The cookie lives for the
// browser session only.
func (a *App) newSessionStore() *sessions.CookieStore {
	blockKey := sha256.Sum256([]byte(a.Config.SessionSecret))
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret), blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   0,
		SameSite: http.SameSiteStrictMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

type signInRequest struct {
	Password string `json:"password" form:"password"`
}

type sessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrf_token,omitempty"`
}

func (a *App) handleSessionStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionStatus{
		Authenticated: a.IsAdmin(c),
		CSRFToken:     CsrfToken(c),
	})
}

func (a *App) handleSignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, fieldError("body", "invalid request body"))
	}
	if !a.checkSecret(req.Password) {
		return apiError(c, ErrUnauthorized)
	}
	if err := setAdminSession(c, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionStatus{Authenticated: true})
}

func (a *App) handleSignOut(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionStatus{})
}

// setAdminSession stores secret in the admin session cookie. A stale or
// undecodable cookie still yields a fresh session to overwrite.
func setAdminSession(c echo.Context, secret string) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	sess.Values[credentialKey] = secret
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return err
	}
	delete(sess.Values, credentialKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// skipCSRF limits the CSRF check to requests that the session cookie would
// authenticate. Bearer requests, sign-in forms and requests whose cookie does
// not hold the secret skip it, so the auth gate answers them with 401.
func (a *App) skipCSRF(c echo.Context) bool {
	r := c.Request()
	if _, ok := bearerToken(r); ok {
		return true
	}
	if r.Method == http.MethodPost && (r.URL.Path == "/api/admin/session" || r.URL.Path == adminLoginPath) {
		return true
	}
	return !a.IsAdmin(c)
}
