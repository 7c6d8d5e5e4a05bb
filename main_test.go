package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// runCLI executes the root command against config files in an empty temp dir
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	full := append([]string{
		"--env", filepath.Join(dir, ".env"),
		"--parser-overrides", filepath.Join(dir, "parser_overrides.yaml"),
		"--roles", filepath.Join(dir, "roles_override.yaml"),
	}, args...)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(full)

	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommandFromStdin(t *testing.T) {
	out, err := runCLI(t, "Here are the parts._____{'partInfo': [{'mfrId':'ECH','partNumber':'A1','location':1,'qty_loc':3}]}\n", "parse", "--hint", "true")
	require.NoError(t, err)

	assert.Equal(t, "Here are the parts.", gjson.Get(out, "text").String())
	assert.Equal(t, "A1", gjson.Get(out, "tableData.0.partNumber").String())
	assert.Equal(t, "assistant", gjson.Get(out, "role").String())
}

func TestParseCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.txt")
	require.NoError(t, os.WriteFile(path, []byte(`[{"MFRID":"X","PARTNUMBER":"Y","DESCRIPTION":"14\" Chain"}]`), 0644))

	out, err := runCLI(t, "", "parse", path)
	require.NoError(t, err)
	assert.Equal(t, `14" Chain`, gjson.Get(out, "tableData.0.DESCRIPTION").String())
	assert.Equal(t, "whole_content", gjson.Get(out, "trace.locator").String())
}

func TestParseCommandHintFalseAndUserRole(t *testing.T) {
	content := `[{"MFRID":"X"}]`

	out, err := runCLI(t, content, "parse", "--hint", "false")
	require.NoError(t, err)
	assert.Equal(t, content, gjson.Get(out, "text").String())
	assert.Equal(t, "not_attempted", gjson.Get(out, "trace.outcome").String())

	out, err = runCLI(t, content, "parse", "--role", "user")
	require.NoError(t, err)
	assert.Equal(t, content, gjson.Get(out, "text").String())
	assert.False(t, gjson.Get(out, "trace").Exists())
}

func TestParseCommandKeepsContentBytes(t *testing.T) {
	content := "Plain answer, no table.\r\n"

	out, err := runCLI(t, content, "parse", "--hint", "false")
	require.NoError(t, err)
	assert.Equal(t, content, gjson.Get(out, "text").String())
}

func TestParseCommandNoAnswer(t *testing.T) {
	out, err := runCLI(t, "No answer found\n", "parse")
	require.NoError(t, err)
	assert.True(t, gjson.Get(out, "noAnswer").Bool())
}

func TestParseCommandRejectsBadHint(t *testing.T) {
	_, err := runCLI(t, "x", "parse", "--hint", "maybe")
	assert.Error(t, err)
}

func TestParseHintFlag(t *testing.T) {
	hint, err := parseHintFlag("auto")
	require.NoError(t, err)
	assert.Nil(t, hint)

	hint, err = parseHintFlag("TRUE")
	require.NoError(t, err)
	require.NotNil(t, hint)
	assert.True(t, *hint)

	hint, err = parseHintFlag("0")
	require.NoError(t, err)
	require.NotNil(t, hint)
	assert.False(t, *hint)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "partsdesk v")
}

func TestServeCommandShutsDownOnCancel(t *testing.T) {
	t.Setenv("PORT", "0")
	t.Setenv("LOG_DIR", t.TempDir())

	reg := prometheus.NewRegistry()
	metricsRegisterer, metricsGatherer = reg, reg
	t.Cleanup(func() {
		metricsRegisterer, metricsGatherer = prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	})

	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"--env", filepath.Join(dir, ".env"),
		"--parser-overrides", filepath.Join(dir, "parser_overrides.yaml"),
		"--roles", filepath.Join(dir, "roles_override.yaml"),
		"serve",
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after its context was cancelled")
	}
	assert.Contains(t, out.String(), "partsdesk v")
}

func TestServeCommandRejectsBadConfig(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := runCLI(t, "", "serve")
	assert.Error(t, err)
}
