package auth_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/favs/internal/auth"
)

func TestSaveLoadClear(t *testing.T) {
	t.Setenv(auth.EnvToken, "")
	path := filepath.Join(t.TempDir(), "favs", "credentials.json")

	creds, err := auth.Load(path)
	assert.NilError(t, err)
	assert.Assert(t, creds == nil, "expected no credentials before login")

	_, err = auth.Save(path, "Bearer abc123", nil)
	assert.NilError(t, err)

	info, err := os.Stat(path)
	assert.NilError(t, err)
	assert.Equal(t, info.Mode().Perm(), os.FileMode(0o600))

	creds, err = auth.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, creds.Token, "abc123")
	assert.Equal(t, creds.Source, auth.SourceFile)

	assert.NilError(t, auth.Clear(path))
	assert.NilError(t, auth.Clear(path), "clearing twice is not an error")

	creds, err = auth.Load(path)
	assert.NilError(t, err)
	assert.Assert(t, creds == nil)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	_, err := auth.Save(path, "from-file", nil)
	assert.NilError(t, err)

	t.Setenv(auth.EnvToken, "from-env")

	creds, err := auth.Load(path)
	assert.NilError(t, err)
	assert.Equal(t, creds.Token, "from-env")
	assert.Equal(t, creds.Source, auth.SourceEnv)
}

func TestSave_EmptyToken(t *testing.T) {
	_, err := auth.Save(filepath.Join(t.TempDir(), "c.json"), "  ", nil)
	assert.Assert(t, is.ErrorContains(err, "empty token"))
}

func TestSession_Authenticated(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		creds *auth.Credentials
		want  bool
	}{
		{"no session", nil, false},
		{"empty token", &auth.Credentials{Token: ""}, false},
		{"no expiry", &auth.Credentials{Token: "t"}, true},
		{"not yet expired", &auth.Credentials{Token: "t", ExpiresAt: &future}, true},
		{"expired", &auth.Credentials{Token: "t", ExpiresAt: &past}, false},
		{"expires exactly now", &auth.Credentials{Token: "t", ExpiresAt: &now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := auth.NewSession(tt.creds, clock)
			assert.Equal(t, s.Authenticated(), tt.want)
		})
	}
}

func TestSession_ReevaluatedOnEachCall(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Minute)
	s := auth.NewSession(&auth.Credentials{Token: "t", ExpiresAt: &expires}, func() time.Time { return now })

	assert.Assert(t, s.Authenticated())

	now = now.Add(2 * time.Minute)
	assert.Assert(t, !s.Authenticated(), "expiry must be observed without rebuilding the session")

	s.Set(&auth.Credentials{Token: "fresh"})
	assert.Assert(t, s.Authenticated())
	assert.Equal(t, s.Token(), "fresh")

	s.Set(nil)
	assert.Assert(t, !s.Authenticated())
	assert.Equal(t, s.Token(), "")
}
