// Package authware provides the session-cookie middleware chain: first-run
// setup gating, required and optional authentication, admin gating, and CSRF
// validation. The gates compose in that order; later gates assume earlier
// ones already ran.
package authware

import (
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	membership "github.com/goliatone/go-membership"
	"github.com/goliatone/go-router"
)

// DefaultCookieName is the session cookie read by the auth gates
const DefaultCookieName = "membership_session"

// DefaultHeaderName is the header carrying the CSRF token
const DefaultHeaderName = "X-CSRF-Token"

// DefaultFormFieldName is the form field carrying the CSRF token
const DefaultFormFieldName = "_token"

// Config defines the configuration shared by the auth gates
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	// Repo gives the gates access to members, sessions, and CSRF tokens
	Repo membership.RepositoryManager

	// CookieName is the session cookie name
	CookieName string

	// HeaderName is the CSRF token header
	HeaderName string

	// FormFieldName is the CSRF token form field
	FormFieldName string

	// LoginRoute is where unauthenticated browsers get redirected
	LoginRoute string

	// SetupRoute is where first-run setup lives
	SetupRoute string

	// StaticPrefix is the asset path exempt from the setup gate
	StaticPrefix string

	// RejectedRouteKey is the cookie holding the URL to return to after login
	RejectedRouteKey string

	// SafeMethods are HTTP methods exempt from CSRF validation
	SafeMethods []string

	// ErrorHandler defines the error handler
	ErrorHandler router.ErrorHandler

	// Logger for gate decisions
	Logger membership.Logger
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.LoginRoute == "" {
		cfg.LoginRoute = "/login"
	}

	if cfg.SetupRoute == "" {
		cfg.SetupRoute = "/setup"
	}

	if cfg.StaticPrefix == "" {
		cfg.StaticPrefix = "/static"
	}

	if cfg.RejectedRouteKey == "" {
		cfg.RejectedRouteKey = "rejected_route"
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	if membership.IsAuthError(err) {
		code := router.StatusUnauthorized
		if err == membership.ErrAdminRequired || err == membership.ErrMemberPending || err == membership.ErrCSRFMismatch {
			code = router.StatusForbidden
		}
		return ctx.Status(code).SendString(http.StatusText(code))
	}
	return ctx.Status(router.StatusInternalServerError).SendString("Internal Server Error")
}

// resolveMember walks cookie to session to member. Any failure collapses to
// an auth-category error so the response never leaks which step broke.
func resolveMember(ctx router.Context, cfg Config) (*membership.Member, *membership.Session, error) {
	token := ctx.Cookies(cfg.CookieName)
	if token == "" {
		return nil, nil, membership.ErrSessionNotFound
	}

	session, err := cfg.Repo.Sessions().GetByToken(ctx.Context(), token)
	if err != nil {
		return nil, nil, err
	}

	member, err := cfg.Repo.Members().GetByID(ctx.Context(), session.MemberID)
	if err != nil {
		if membership.IsAuthError(err) || isNotFound(err) {
			return nil, nil, membership.ErrSessionNotFound
		}
		return nil, nil, err
	}

	member.EnsureStatus()
	if err := membership.StatusAuthError(member.Status); err != nil {
		return nil, nil, err
	}

	return member, session, nil
}

// attach exposes the member and session to locals and to the request context
// so both router handlers and plain context consumers can reach them.
func attach(ctx router.Context, member *membership.Member, session *membership.Session) {
	info := membership.SessionInfo{SessionID: session.ID}

	ctx.Locals(membership.CurrentUserKey, member)
	ctx.Locals(membership.SessionInfoKey, info)

	reqCtx := membership.WithCurrentUser(ctx.Context(), member)
	reqCtx = membership.WithSessionInfo(reqCtx, info)
	ctx.SetContext(reqCtx)
}

func isNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}

func isSafeMethod(method string, safe []string) bool {
	method = strings.ToUpper(method)
	for _, m := range safe {
		if method == m {
			return true
		}
	}
	return false
}

func setRedirectCookie(ctx router.Context, cfg Config) {
	ctx.Cookie(&router.Cookie{
		Name:     cfg.RejectedRouteKey,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
