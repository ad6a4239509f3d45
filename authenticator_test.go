package membership_test

import (
	"context"
	"testing"
	"time"

	membership "github.com/goliatone/go-membership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (membership.RepositoryManager, *membership.SessionAuther, string, *membership.Member) {
	t.Helper()

	repo := setupRepo(t)

	password := "correct horse battery staple"
	hash, err := membership.HashPassword(password)
	require.NoError(t, err)

	member, err := repo.Members().Create(context.Background(), &membership.Member{
		Username:     "pdoe",
		Email:        "pat@example.com",
		PasswordHash: hash,
		Status:       membership.MemberStatusActive,
	})
	require.NoError(t, err)

	auther := membership.NewSessionAuthenticator(repo, newMockConfig())

	return repo, auther, password, member
}

func TestLoginIssuesSession(t *testing.T) {
	repo, auther, password, member := newAuthFixture(t)

	token, session, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, session)
	assert.Equal(t, member.ID, session.MemberID)

	found, err := repo.Sessions().GetByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
}

func TestLoginByUsername(t *testing.T) {
	_, auther, password, member := newAuthFixture(t)

	_, session, err := auther.Login(context.Background(), "pdoe", password, false)
	require.NoError(t, err)
	assert.Equal(t, member.ID, session.MemberID)
}

func TestLoginWrongPasswordLeavesNoSession(t *testing.T) {
	db := setupDB(t)
	repo := membership.NewRepositoryManager(db)

	hash, err := membership.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	_, err = repo.Members().Create(context.Background(), &membership.Member{
		Username:     "pdoe",
		Email:        "pat@example.com",
		PasswordHash: hash,
		Status:       membership.MemberStatusActive,
	})
	require.NoError(t, err)

	auther := membership.NewSessionAuthenticator(repo, newMockConfig())

	token, session, err := auther.Login(context.Background(), "pat@example.com", "wrong password", false)
	require.ErrorIs(t, err, membership.ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, session)

	count, err := db.NewSelect().Model((*membership.Session)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "failed logins must not create session rows")
}

func TestLoginUnknownIdentifierSameError(t *testing.T) {
	_, auther, _, _ := newAuthFixture(t)

	_, _, unknownErr := auther.Login(context.Background(), "nobody@example.com", "whatever", false)
	_, _, wrongErr := auther.Login(context.Background(), "pat@example.com", "wrong password", false)

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(),
		"unknown identifier and wrong password must be indistinguishable")
}

func TestLoginBlockedStatuses(t *testing.T) {
	cases := []struct {
		status  membership.MemberStatus
		wantErr error
	}{
		{membership.MemberStatusPending, membership.ErrMemberPending},
		{membership.MemberStatusSuspended, membership.ErrMemberSuspended},
		{membership.MemberStatusExpired, membership.ErrMemberExpired},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			repo, auther, password, member := newAuthFixture(t)

			_, err := repo.Members().UpdateStatus(context.Background(), member.ID, tc.status)
			require.NoError(t, err)

			_, _, err = auther.Login(context.Background(), "pat@example.com", password, false)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoginHonoraryMemberAllowed(t *testing.T) {
	repo, auther, password, member := newAuthFixture(t)

	_, err := repo.Members().UpdateStatus(context.Background(), member.ID, membership.MemberStatusHonorary)
	require.NoError(t, err)

	_, session, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)
	require.NotNil(t, session)
}

func TestExtendedSessionLastsLonger(t *testing.T) {
	_, auther, password, _ := newAuthFixture(t)

	_, regular, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)

	_, extended, err := auther.Login(context.Background(), "pat@example.com", password, true)
	require.NoError(t, err)

	assert.True(t, extended.ExpiresAt.After(regular.ExpiresAt.Add(24*time.Hour)),
		"remember-me sessions outlive regular ones")
}

func TestLogoutInvalidatesSessionAndCSRF(t *testing.T) {
	repo, auther, password, _ := newAuthFixture(t)

	token, session, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)

	csrfToken, err := repo.CSRFTokens().Generate(context.Background(), session.ID)
	require.NoError(t, err)

	require.NoError(t, auther.Logout(context.Background(), token))

	_, err = repo.Sessions().GetByToken(context.Background(), token)
	require.Error(t, err)

	valid, err := repo.CSRFTokens().Validate(context.Background(), session.ID, csrfToken)
	require.NoError(t, err)
	assert.False(t, valid, "logout revokes the session's csrf token")
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	_, auther, _, _ := newAuthFixture(t)

	require.NoError(t, auther.Logout(context.Background(), "never-issued"))
}

func TestMemberFromSession(t *testing.T) {
	_, auther, password, member := newAuthFixture(t)

	_, session, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)

	found, err := auther.MemberFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)

	_, err = auther.MemberFromSession(context.Background(), nil)
	require.ErrorIs(t, err, membership.ErrSessionNotFound)
}

func TestInvalidateMemberSessions(t *testing.T) {
	repo, auther, password, member := newAuthFixture(t)

	tokenA, _, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)
	tokenB, _, err := auther.Login(context.Background(), "pat@example.com", password, false)
	require.NoError(t, err)

	require.NoError(t, auther.InvalidateMemberSessions(context.Background(), member))

	for _, token := range []string{tokenA, tokenB} {
		_, err := repo.Sessions().GetByToken(context.Background(), token)
		require.Error(t, err)
	}
}
