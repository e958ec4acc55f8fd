package users

import (
	"context"
	"testing"

	"setu-backend/internal/application/emails"
	"setu-backend/internal/infrastructure/database/dbtest"
	"setu-backend/internal/middleware"
	"setu-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Service{DB: dbtest.New(t), Rdb: rdb}, rdb
}

func create(t *testing.T, s *Service, email, role string) string {
	u, err := s.CreateUser(context.Background(), CreateUserInput{Email: email, Password: "gram@2024", Fullname: "asha  devi", Role: role})
	require.NoError(t, err)
	return u.UserID.String()
}

func TestCreateUser(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{Email: " Asha@Example.org ", Password: "gram@2024", Fullname: "asha  devi"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.org", u.Email)
	assert.Equal(t, "Asha Devi", u.Fullname)
	assert.Equal(t, constants.Viewer, u.Role)
	assert.NotEqual(t, "gram@2024", u.PasswordHash)

	_, err = s.CreateUser(ctx, CreateUserInput{Email: "asha@example.org", Password: "gram@2024", Fullname: "Asha"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

type welcomeMailer struct{ sent []string }

func (m *welcomeMailer) SendWelcome(ctx context.Context, toEmail, name, role string) error {
	m.sent = append(m.sent, toEmail+"|"+name+"|"+role)
	return nil
}

func (m *welcomeMailer) SendReviewOutcome(ctx context.Context, toEmail, name string, n emails.ReviewNotice) error {
	return nil
}

func TestCreateUser_SendsWelcome(t *testing.T) {
	s, _ := newService(t)
	m := &welcomeMailer{}
	s.Mailer = m
	create(t, s, "field@example.in", constants.Employee)
	assert.Equal(t, []string{"field@example.in|Asha Devi|employee"}, m.sent)
}

func TestCreateUser_Validation(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	cases := []struct {
		in   CreateUserInput
		want error
	}{
		{CreateUserInput{Email: "nope", Password: "gram@2024", Fullname: "A"}, ErrInvalidEmail},
		{CreateUserInput{Email: "a@b.in", Password: "short", Fullname: "A"}, ErrInvalidPassword},
		{CreateUserInput{Email: "a@b.in", Password: "gram@2024", Fullname: "  "}, ErrFullnameRequired},
		{CreateUserInput{Email: "a@b.in", Password: "gram@2024", Fullname: "Agent 47"}, ErrInvalidFullname},
		{CreateUserInput{Email: "a@b.in", Password: "gram@2024", Fullname: "A", Role: "mayor"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		_, err := s.CreateUser(ctx, tc.in)
		assert.ErrorIs(t, err, tc.want)
	}
}

func TestViewUser(t *testing.T) {
	s, _ := newService(t)
	id := create(t, s, "officer@example.org", constants.Officer)

	u, err := s.ViewUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, constants.Officer, u.Role)

	_, err = s.ViewUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidUserID)
	_, err = s.ViewUser(context.Background(), "550e8400-e29b-41d4-a716-446655440000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestList_FilterByRole(t *testing.T) {
	s, _ := newService(t)
	create(t, s, "v1@example.org", constants.Volunteer)
	create(t, s, "o1@example.org", constants.Officer)

	all, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	officers, err := s.List(context.Background(), constants.Officer)
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, "o1@example.org", officers[0].Email)
}

func TestUpdateRole_RevokesSessions(t *testing.T) {
	s, rdb := newService(t)
	ctx := context.Background()
	admin := create(t, s, "admin@example.org", constants.Admin)
	target := create(t, s, "vol@example.org", constants.Volunteer)

	require.NoError(t, middleware.TrackSession(ctx, rdb, target, "sid-1"))
	require.NoError(t, rdb.Set(ctx, middleware.SessionRedisPrefix+"sid-1", "{}", 0).Err())

	u, err := s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: target, TargetRole: constants.Employee})
	require.NoError(t, err)
	assert.Equal(t, constants.Employee, u.Role)

	n, err := rdb.Exists(ctx, middleware.SessionRedisPrefix+"sid-1", middleware.UserSessionsPrefix+target).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateRole_Governance(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	admin := create(t, s, "admin@example.org", constants.Admin)
	officer := create(t, s, "officer@example.org", constants.Officer)

	_, err := s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: officer, ActorRole: constants.Officer, TargetUserID: admin, TargetRole: constants.Admin})
	assert.ErrorIs(t, err, ErrAdminOnly)

	_, err = s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: admin, TargetRole: constants.Viewer})
	assert.ErrorIs(t, err, ErrSelfRoleChange)

	_, err = s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: officer, ActorRole: constants.Officer, TargetUserID: admin, TargetRole: constants.Viewer})
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, err = s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: officer, TargetRole: "mayor"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = s.UpdateRole(ctx, UpdateRoleInput{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: "550e8400-e29b-41d4-a716-446655440000", TargetRole: constants.Viewer})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
