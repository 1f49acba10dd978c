package bridge_test

import (
	"testing"
	"time"

	bridge "github.com/goliatone/go-auth-bridge"
	"github.com/goliatone/go-auth-bridge/engine"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/require"
)

func TestGetSessionWithNoCookie(t *testing.T) {
	ctx := router.NewMockContext()

	session := bridge.GetSession(ctx, bridge.Config{}, testEnvironment())
	require.Nil(t, session)
}

func TestGetSessionWithInvalidCookie(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = "definitely-not-a-token"

	session := bridge.GetSession(ctx, bridge.Config{}, testEnvironment())
	require.Nil(t, session)
}

func TestGetSessionWithExpiredCookie(t *testing.T) {
	env := testEnvironment()
	signed, err := engine.SignSession(&engine.Profile{ID: "user-1"}, "github", []byte(env.Secret), -time.Minute)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = signed

	require.Nil(t, bridge.GetSession(ctx, bridge.Config{}, env))
}

func TestGetSessionWithWrongSecret(t *testing.T) {
	signed, err := engine.SignSession(&engine.Profile{ID: "user-1"}, "github", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = signed

	require.Nil(t, bridge.GetSession(ctx, bridge.Config{}, testEnvironment()))
}

func TestGetSessionWithValidCookie(t *testing.T) {
	env := testEnvironment()
	signed, err := engine.SignSession(&engine.Profile{
		ID:    "user-1",
		Email: "person@example.com",
	}, "github", []byte(env.Secret), time.Hour)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = signed

	session := bridge.GetSession(ctx, bridge.Config{}, env)
	require.NotNil(t, session)
	require.Equal(t, "user-1", session.User.ID)
	require.Equal(t, "github", session.Provider)
}

func TestGetSessionWithoutSecret(t *testing.T) {
	signed, err := engine.SignSession(&engine.Profile{ID: "user-1"}, "github", []byte("whatever"), time.Hour)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = signed

	require.Nil(t, bridge.GetSession(ctx, bridge.Config{}, bridge.Environment{}))
}

func TestGetSessionHonorsCustomCookieName(t *testing.T) {
	env := testEnvironment()
	signed, err := engine.SignSession(&engine.Profile{ID: "user-1"}, "github", []byte(env.Secret), time.Hour)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM["my_session"] = signed

	session := bridge.GetSession(ctx, bridge.Config{CookieName: "my_session"}, env)
	require.NotNil(t, session)

	require.Nil(t, bridge.GetSession(ctx, bridge.Config{}, env))
}

func TestCurrentUser(t *testing.T) {
	env := testEnvironment()
	signed, err := engine.SignSession(&engine.Profile{ID: "user-1", Name: "Person"}, "github", []byte(env.Secret), time.Hour)
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.CookiesM[bridge.DefaultCookieName] = signed

	user := bridge.CurrentUser(ctx, bridge.Config{}, env)
	require.NotNil(t, user)
	require.Equal(t, "Person", user.Name)

	empty := router.NewMockContext()
	require.Nil(t, bridge.CurrentUser(empty, bridge.Config{}, env))
}
