package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "setu-backend/internal/application/auth"
	"setu-backend/internal/domain"
	"setu-backend/internal/interfaces/handlers/handlertest"
	"setu-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "gram@2024" {
		return f.user, nil
	}
	return nil, authsvc.ErrInvalidCredentials
}

var officer = &domain.User{
	UserID:   uuid.MustParse("0d7f7c3e-8c2b-4a57-b7a4-52a4f3d1c001"),
	Email:    "bdo.sitapur@example.gov.in",
	Fullname: "Meera Saxena",
	Role:     "officer",
}

// setup mounts the auth routes behind the real Redis session middleware.
func setup(t *testing.T, finder authsvc.UserFinder) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{UserFinder: finder, Rdb: rdb, Config: middleware.SessionConfig{}}
	app := handlertest.App("")
	app.Use(middleware.SessionWithClient(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, rdb
}

func sessionCookie(t *testing.T, setCookie []string) string {
	for _, c := range setCookie {
		if strings.HasPrefix(c, middleware.SessionCookieName+"=") {
			return strings.SplitN(c, ";", 2)[0]
		}
	}
	t.Fatalf("no %s cookie in %v", middleware.SessionCookieName, setCookie)
	return ""
}

func TestLogin_BadRequests(t *testing.T) {
	app, _ := setup(t, &fakeUserFinder{user: officer})

	res := handlertest.Do(t, app, fiber.MethodPost, "/login", nil)
	assert.Equal(t, fiber.StatusBadRequest, res.Code)

	res = handlertest.Do(t, app, fiber.MethodPost, "/login", map[string]string{"email": officer.Email})
	assert.Equal(t, fiber.StatusBadRequest, res.Code)
	assert.Equal(t, authsvc.ErrEmailPasswordRequired.Error(), res.Message())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app, _ := setup(t, &fakeUserFinder{user: officer})

	res := handlertest.Do(t, app, fiber.MethodPost, "/login", map[string]string{"email": officer.Email, "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, res.Code)

	res = handlertest.Do(t, app, fiber.MethodPost, "/login", map[string]string{"email": "nobody@example.in", "password": "gram@2024"})
	assert.Equal(t, fiber.StatusUnauthorized, res.Code)
}

func TestLogin_LookupFailureIs500(t *testing.T) {
	app, _ := setup(t, &fakeUserFinder{err: errors.New("connection reset")})
	res := handlertest.Do(t, app, fiber.MethodPost, "/login", map[string]string{"email": officer.Email, "password": "gram@2024"})
	assert.Equal(t, fiber.StatusInternalServerError, res.Code)
	assert.Equal(t, "Internal Server Error", res.Message())

	app, _ = setup(t, nil)
	res = handlertest.Do(t, app, fiber.MethodPost, "/login", map[string]string{"email": officer.Email, "password": "gram@2024"})
	assert.Equal(t, fiber.StatusInternalServerError, res.Code)
}

func TestLogin_MeLogoutRoundTrip(t *testing.T) {
	app, rdb := setup(t, &fakeUserFinder{user: officer})
	ctx := context.Background()

	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"bdo.sitapur@example.gov.in","password":"gram@2024"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp.Header.Values("Set-Cookie"))

	tracked, err := rdb.SMembers(ctx, middleware.UserSessionsPrefix+officer.UserID.String()).Result()
	require.NoError(t, err)
	require.Len(t, tracked, 1)
	assert.EqualValues(t, 1, rdb.Exists(ctx, middleware.SessionRedisPrefix+tracked[0]).Val())

	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodDelete, "/logout", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), middleware.SessionCookieName+"=;")

	assert.EqualValues(t, 0, rdb.Exists(ctx, middleware.SessionRedisPrefix+tracked[0]).Val())
	assert.EqualValues(t, 0, rdb.SCard(ctx, middleware.UserSessionsPrefix+officer.UserID.String()).Val())

	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_FromLocals(t *testing.T) {
	h := &Handlers{}
	app := handlertest.App("volunteer")
	app.Get("/me", h.Me)

	res := handlertest.Do(t, app, fiber.MethodGet, "/me", nil)
	require.Equal(t, fiber.StatusOK, res.Code)
	user, _ := res.Data()["user"].(map[string]interface{})
	assert.Equal(t, handlertest.UserID, user["user_id"])
	assert.Equal(t, "volunteer", user["role"])
}
