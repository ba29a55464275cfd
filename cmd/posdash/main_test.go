package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// writeConfig points the commands at a temporary config file.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "posdash.yaml")
	yaml += "log:\n  level: warn\n  file_path: " + filepath.Join(dir, "posdash.log") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	configFlag = path
	t.Cleanup(func() { configFlag, logLevelFlag = "", "" })
	return dir
}

func TestSetupLogLevelOverride(t *testing.T) {
	writeConfig(t, "")

	e, err := setup()
	require.NoError(t, err)
	assert.False(t, e.log.Core().Enabled(zapcore.InfoLevel), "log.level applies without the flag")

	logLevelFlag = "debug"
	e, err = setup()
	require.NoError(t, err)
	assert.True(t, e.log.Core().Enabled(zapcore.DebugLevel))
}

func TestRegisterSavesSession(t *testing.T) {
	var got domain.Registration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/local/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jwt": "tok", "user": map[string]any{"id": 3, "username": "cashier"}})
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	session := filepath.Join(dir, "session.json")
	writeConfig(t, "api:\n  base_url: "+srv.URL+"\nauth:\n  session_file: "+session+"\n")

	var out bytes.Buffer
	cmd := registerCmd()
	cmd.SetOut(&out)
	cmd.SetIn(bytes.NewBufferString("secret1\n"))
	cmd.SetArgs([]string{"--username", "cashier", "--email", "a@b.c"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, domain.Registration{Username: "cashier", Email: "a@b.c", Password: "secret1"}, got)
	assert.Contains(t, out.String(), "Registered cashier")

	sess, err := auth.NewSessionStore(session).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.JWT)
}
