package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authcore/internal/config"
	"github.com/dtroode/authcore/internal/credential"
	"github.com/dtroode/authcore/internal/errutil"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "hash-password", "create-identity"}, names)
}

func TestHashPasswordCmd(t *testing.T) {
	t.Setenv("KDF_TIME", "1")
	t.Setenv("KDF_MEM", "1024")
	t.Setenv("KDF_PAR", "1")

	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("correct horse\n"))
	cmd.SetArgs([]string{"hash-password"})

	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, credential.Verify("correct horse", hash))
	assert.False(t, credential.Verify("wrong horse", hash))
}

func TestHashPasswordCmd_EmptyPassword(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{"hash-password"})

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "EMPTY_PASSWORD")
}

func TestCreateIdentityCmd_RequiresFlags(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"create-identity", "--email", "alice@example.com"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "newline", in: "secret\n", want: "secret"},
		{name: "crlf", in: "secret\r\n", want: "secret"},
		{name: "no trailing newline", in: "secret", want: "secret"},
		{name: "only first line", in: "first\nsecond\n", want: "first"},
		{name: "spaces are kept", in: " pass phrase \n", want: " pass phrase "},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := readLine(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenDiagnosticLog(t *testing.T) {
	t.Parallel()

	t.Run("disabled opens nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "diag.log")
		w, closeFn, err := openDiagnosticLog(config.Diagnostic{ResetTokenFallback: false, LogPath: path})
		require.NoError(t, err)
		defer closeFn()

		assert.Nil(t, w)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("enabled without path uses stderr", func(t *testing.T) {
		t.Parallel()

		w, closeFn, err := openDiagnosticLog(config.Diagnostic{ResetTokenFallback: true})
		require.NoError(t, err)
		defer closeFn()

		assert.Equal(t, os.Stderr, w)
	})

	t.Run("enabled with path creates private file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "diag.log")
		w, closeFn, err := openDiagnosticLog(config.Diagnostic{ResetTokenFallback: true, LogPath: path})
		require.NoError(t, err)
		require.NotNil(t, w)
		closeFn()

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("unwritable path", func(t *testing.T) {
		t.Parallel()

		_, closeFn, err := openDiagnosticLog(config.Diagnostic{
			ResetTokenFallback: true,
			LogPath:            filepath.Join(t.TempDir(), "missing", "diag.log"),
		})
		defer closeFn()
		require.Error(t, err)
	})
}

func TestNewDispatcher_UnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Notify: config.Notify{Driver: "carrier-pigeon"}}

	_, err := newDispatcher(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestServeCmd_RejectsFallbackWithoutDebug(t *testing.T) {
	t.Setenv("DEBUG", "false")
	t.Setenv("DIAGNOSTIC_RESET_TOKEN_FALLBACK", "true")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.ErrorIs(t, err, config.ErrFallbackWithoutDebug)
}
