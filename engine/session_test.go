package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSessionSecret() []byte {
	return []byte("test-session-secret")
}

func TestSignAndParseSession(t *testing.T) {
	profile := &Profile{
		ID:    "user-1",
		Name:  "Person",
		Email: "person@example.com",
		Image: "https://example.com/avatar.png",
	}

	signed, err := SignSession(profile, "github", testSessionSecret(), time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	session, err := ParseSession(signed, testSessionSecret())
	require.NoError(t, err)
	require.Equal(t, "user-1", session.User.ID)
	require.Equal(t, "Person", session.User.Name)
	require.Equal(t, "person@example.com", session.User.Email)
	require.Equal(t, "https://example.com/avatar.png", session.User.Image)
	require.Equal(t, "github", session.Provider)
	require.WithinDuration(t, time.Now().Add(time.Hour), session.Expires, time.Minute)
}

func TestParseSessionRejectsWrongSecret(t *testing.T) {
	signed, err := SignSession(&Profile{ID: "user-1"}, "github", testSessionSecret(), time.Hour)
	require.NoError(t, err)

	_, err = ParseSession(signed, []byte("a-different-secret"))
	require.Error(t, err)
}

func TestParseSessionRejectsExpired(t *testing.T) {
	signed, err := SignSession(&Profile{ID: "user-1"}, "github", testSessionSecret(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseSession(signed, testSessionSecret())
	require.Error(t, err)
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseSession(token, testSessionSecret())
		require.Error(t, err, "token %q", token)
	}
}
