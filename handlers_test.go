package bridge_test

import (
	"testing"

	bridge "github.com/goliatone/go-auth-bridge"
	"github.com/goliatone/go-auth-bridge/engine"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testEnvironment() bridge.Environment {
	return bridge.Environment{
		Secret: "test-bridge-secret",
		Name:   "production",
	}
}

func TestBuildHandlersExposesBothMethods(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{}, bridge.WithEnvironment(testEnvironment()))
	require.NoError(t, err)
	require.NotNil(t, handlers.GET)
	require.NotNil(t, handlers.POST)
	require.Equal(t, "/api/auth", handlers.Config().BasePath)
}

func TestHandlersPassThroughOutsidePrefix(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{}, bridge.WithEnvironment(testEnvironment()))
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("Path").Return("/blog/posts")

	require.NoError(t, handlers.GET(ctx))
	require.True(t, ctx.NextCalled)
	ctx.AssertNotCalled(t, "JSON", mock.Anything, mock.Anything)
}

func TestHandlersServeProvidersUnderPrefix(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{
		Providers: []engine.ProviderConfig{
			{ID: "github", Name: "GitHub"},
			{ID: "google", Name: "Google"},
		},
		Origin: "https://app.example",
	}, bridge.WithEnvironment(testEnvironment()))
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("Path").Return("/api/auth/providers")
	ctx.On("Method").Return("GET")

	var payload map[string]engine.ProviderInfo
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]engine.ProviderInfo)
	}).Return(nil)

	require.NoError(t, handlers.GET(ctx))
	require.False(t, ctx.NextCalled)
	require.Len(t, payload, 2)
	require.Contains(t, payload, "github")
	require.Contains(t, payload, "google")
}

func TestHandlersHonorCustomPrefix(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{
		Prefix: "/auth",
	}, bridge.WithEnvironment(testEnvironment()))
	require.NoError(t, err)

	outside := router.NewMockContext()
	outside.On("Path").Return("/api/auth/providers")
	require.NoError(t, handlers.GET(outside))
	require.True(t, outside.NextCalled)

	inside := router.NewMockContext()
	inside.On("Path").Return("/auth/providers")
	inside.On("Method").Return("GET")
	inside.On("JSON", router.StatusOK, mock.Anything).Return(nil)
	require.NoError(t, handlers.GET(inside))
	require.False(t, inside.NextCalled)
}

func TestBuildHandlersWithoutSecretDefersFailure(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{}, bridge.WithEnvironment(bridge.Environment{Name: "production"}))
	require.NoError(t, err)

	// Out-of-prefix traffic still falls through.
	outside := router.NewMockContext()
	outside.On("Path").Return("/healthz")
	require.NoError(t, handlers.GET(outside))
	require.True(t, outside.NextCalled)

	// Owned traffic surfaces the configuration failure.
	inside := router.NewMockContext()
	inside.On("Path").Return("/api/auth/session")
	err = handlers.GET(inside)
	require.Error(t, err)
	require.True(t, engine.IsMissingSecret(err))
}

func TestHandlersGETAndPOSTShareLogic(t *testing.T) {
	handlers, err := bridge.BuildHandlers(bridge.Config{}, bridge.WithEnvironment(testEnvironment()))
	require.NoError(t, err)

	ctx := router.NewMockContext()
	ctx.On("Path").Return("/elsewhere")
	require.NoError(t, handlers.POST(ctx))
	require.True(t, ctx.NextCalled)
}
