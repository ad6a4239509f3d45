package authware

import (
	membership "github.com/goliatone/go-membership"
	"github.com/goliatone/go-router"
)

// RequireCSRF validates the session-bound CSRF token on state-changing
// requests. It must run after one of the auth gates: the session info they
// attach is how the token gets scoped to a session. Safe methods pass
// through untouched.
//
// Only the header is inspected here. Requests without the header fall
// through to the handler, which validates form-carried tokens itself; a
// header that is present but wrong is rejected before the handler runs.
func RequireCSRF(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			if isSafeMethod(ctx.Method(), cfg.SafeMethods) {
				return ctx.Next()
			}

			info, ok := sessionInfo(ctx)
			if !ok {
				// No auth gate ran before us. Treat as unauthenticated
				// rather than silently skipping validation.
				return cfg.ErrorHandler(ctx, membership.ErrSessionNotFound)
			}

			token := ctx.Header(cfg.HeaderName)
			if token == "" {
				return ctx.Next()
			}

			valid, err := cfg.Repo.CSRFTokens().Validate(ctx.Context(), info.SessionID, token)
			if err != nil {
				cfg.Logger.Error("csrf validation error: %v", err)
				return cfg.ErrorHandler(ctx, err)
			}

			if !valid {
				return cfg.ErrorHandler(ctx, membership.ErrCSRFMismatch)
			}

			return ctx.Next()
		}
	}
}

// IssueCSRFToken mints the token for the current session and exposes it to
// templates under the csrf_token local. Generating replaces any previous
// token for the session, so a page render invalidates older open forms.
func IssueCSRFToken(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			info, ok := sessionInfo(ctx)
			if !ok {
				return ctx.Next()
			}

			token, err := cfg.Repo.CSRFTokens().Generate(ctx.Context(), info.SessionID)
			if err != nil {
				cfg.Logger.Error("csrf token generate error: %v", err)
				return ctx.Next()
			}

			ctx.Locals("csrf_token", token)
			ctx.Locals("csrf_header_name", cfg.HeaderName)
			ctx.Locals("csrf_field_name", cfg.FormFieldName)
			return ctx.Next()
		}
	}
}

// ValidateFormToken checks the form-carried token for handlers that take
// HTML form submissions. A missing token reports invalid, not an error.
func ValidateFormToken(ctx router.Context, config ...Config) (bool, error) {
	cfg := configDefault(config...)

	info, ok := sessionInfo(ctx)
	if !ok {
		return false, membership.ErrSessionNotFound
	}

	token := ctx.FormValue(cfg.FormFieldName)
	if token == "" {
		return false, nil
	}

	return cfg.Repo.CSRFTokens().Validate(ctx.Context(), info.SessionID, token)
}

func sessionInfo(ctx router.Context) (membership.SessionInfo, bool) {
	if info, ok := membership.SessionInfoFromRouter(ctx); ok {
		return info, true
	}
	return membership.SessionInfoFromContext(ctx.Context())
}
