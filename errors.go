package membership

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrMemberNotFound is the error we return for non found members
var ErrMemberNotFound = goerrors.New("member not found", goerrors.CategoryNotFound).
	WithTextCode("MEMBER_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials covers both unknown identifiers and wrong passwords,
// so a caller cannot tell the two apart.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionNotFound is returned for missing, expired, or invalid sessions
var ErrSessionNotFound = goerrors.New("session not found or expired", goerrors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(goerrors.CodeUnauthorized)

// ErrMemberPending means the member authenticated but has not been let in yet
var ErrMemberPending = goerrors.New("membership is pending approval", goerrors.CategoryAuthz).
	WithTextCode("MEMBER_PENDING").
	WithCode(goerrors.CodeForbidden)

// ErrMemberExpired means the member's dues lapsed
var ErrMemberExpired = goerrors.New("membership has expired", goerrors.CategoryAuth).
	WithTextCode("MEMBER_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrMemberSuspended means the member was suspended by an admin
var ErrMemberSuspended = goerrors.New("membership is suspended", goerrors.CategoryAuth).
	WithTextCode("MEMBER_SUSPENDED").
	WithCode(goerrors.CodeUnauthorized)

// ErrAdminRequired is returned when an authenticated member lacks the admin role
var ErrAdminRequired = goerrors.New("admin role required", goerrors.CategoryAuthz).
	WithTextCode("ADMIN_REQUIRED").
	WithCode(goerrors.CodeForbidden)

// ErrDuplicateMember is returned when email or username is already taken
var ErrDuplicateMember = goerrors.New("email or username already registered", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_MEMBER").
	WithCode(goerrors.CodeConflict)

// ErrBypassDues rejects expiration of members exempt from dues
var ErrBypassDues = goerrors.New("member bypasses dues and cannot be expired", goerrors.CategoryValidation).
	WithTextCode("BYPASS_DUES").
	WithCode(goerrors.CodeBadRequest)

// ErrCSRFMismatch is returned when a presented CSRF token fails validation.
// The message is deliberately generic.
var ErrCSRFMismatch = goerrors.New("forbidden", goerrors.CategoryAuthz).
	WithTextCode("CSRF_MISMATCH").
	WithCode(goerrors.CodeForbidden)

// StatusAuthError maps a member status to the auth decision for that status.
// Active and Honorary pass; Pending is recognized but not permitted; every
// other status is indistinguishable from not being authenticated.
func StatusAuthError(status MemberStatus) error {
	switch status {
	case MemberStatusActive, MemberStatusHonorary:
		return nil
	case MemberStatusPending:
		return ErrMemberPending
	case MemberStatusSuspended:
		return ErrMemberSuspended
	case MemberStatusExpired:
		return ErrMemberExpired
	default:
		return ErrInvalidCredentials
	}
}

// IsAuthError reports whether err belongs to the auth/authz categories,
// meaning it is safe to show a generic unauthorized/forbidden response.
func IsAuthError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuth || richErr.Category == goerrors.CategoryAuthz
}
