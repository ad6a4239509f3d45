package authware

import (
	"net/url"
	"strings"

	membership "github.com/goliatone/go-membership"
	"github.com/goliatone/go-router"
)

// RequireSetup redirects every request to the setup route until an admin
// exists. The setup route itself, the login route, and static assets stay
// reachable so the redirect target and its page assets can actually load.
// The admin lookup fails open: if the check itself errors we let the request
// through rather than wedge the whole site behind a DB hiccup.
func RequireSetup(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			path := ctx.Path()
			if strings.HasPrefix(path, cfg.SetupRoute) ||
				strings.HasPrefix(path, cfg.LoginRoute) ||
				strings.HasPrefix(path, cfg.StaticPrefix) {
				return ctx.Next()
			}

			hasAdmin, err := cfg.Repo.Members().HasAdmin(ctx.Context())
			if err != nil {
				cfg.Logger.Error("setup gate admin check failed: %v", err)
				return ctx.Next()
			}

			if !hasAdmin {
				return ctx.Redirect(cfg.SetupRoute, router.StatusSeeOther)
			}

			return ctx.Next()
		}
	}
}

// RequireAuth rejects requests that do not carry a valid session for a
// member in good standing. On success the member and session info are
// attached to locals and to the request context.
func RequireAuth(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			member, session, err := resolveMember(ctx, cfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			attach(ctx, member, session)
			return ctx.Next()
		}
	}
}

// RequireAuthRedirect behaves like RequireAuth but answers failures with a
// redirect to the login route, stashing the rejected URL so login can send
// the browser back.
func RequireAuthRedirect(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			member, session, err := resolveMember(ctx, cfg)
			if err != nil {
				cfg.Logger.Info("auth redirect: %v path=%s", err, ctx.OriginalURL())
				setRedirectCookie(ctx, cfg)

				target := cfg.LoginRoute
				if ref := ctx.OriginalURL(); ref != "" {
					target += "?from=" + url.QueryEscape(ref)
				}

				statusCode := router.StatusSeeOther
				if ctx.Method() == string(router.GET) {
					statusCode = router.StatusFound
				}
				return ctx.Redirect(target, statusCode)
			}

			attach(ctx, member, session)
			return ctx.Next()
		}
	}
}

// RequireAdmin gates on the admin role on top of RequireAuth semantics. A
// valid non-admin session gets Forbidden, not Unauthorized.
func RequireAdmin(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			member, session, err := resolveMember(ctx, cfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if !member.IsAdmin() {
				return cfg.ErrorHandler(ctx, membership.ErrAdminRequired)
			}

			attach(ctx, member, session)
			return ctx.Next()
		}
	}
}

// OptionalAuth attaches the member when a valid session exists and stays
// silent otherwise. It never rejects a request.
func OptionalAuth(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			member, session, err := resolveMember(ctx, cfg)
			if err != nil {
				if !membership.IsAuthError(err) {
					cfg.Logger.Warn("optional auth resolve error: %v", err)
				}
				return ctx.Next()
			}

			attach(ctx, member, session)
			return ctx.Next()
		}
	}
}
