package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelWarn, parseLevel("bogus"))
}

func TestSubcommandsRequireURL(t *testing.T) {
	for _, name := range []string{"comments", "summarize", "image"} {
		cmd := rootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{name})
		assert.Error(t, cmd.Execute(), name)
	}
}

func TestRejectsURLOutsidePrefix(t *testing.T) {
	t.Setenv("CF_ACCOUNT_ID", "acct")
	t.Setenv("CF_API_TOKEN", "token")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"comments", "https://example.com/item?id=1"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://news.ycombinator.com/")
}
