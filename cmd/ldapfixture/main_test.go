package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/ldapfixture/internal/config"
	"github.com/KilimcininKorOglu/ldapfixture/internal/logging"
	"github.com/KilimcininKorOglu/ldapfixture/internal/server"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func startFixture(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.NewServer(config.ServerConfig{}, server.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String()
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Equal(t, 1, run(context.Background(), []string{"frobnicate"}))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, context.Background(), "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)

	out, err = execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ldapfixture version "+version)
	assert.Contains(t, out, "Go version:")
}

func TestConfigShow(t *testing.T) {
	t.Setenv("LDAPFIXTURE_SERVER_ADDRESS", "127.0.0.1:4389")

	out, err := execute(t, context.Background(), "config", "show", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "address: 127.0.0.1:4389")
	assert.Contains(t, out, "level: info")
}

func TestConfigValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0644))

	_, err := execute(t, context.Background(), "config", "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: json\n"), 0644))
	out, err := execute(t, context.Background(), "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid (source: "+path+")")
}

func TestProbe(t *testing.T) {
	addr := startFixture(t)

	out, err := execute(t, context.Background(), "probe", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "bind: Success")
	assert.Contains(t, out, "abcdefghijklmnopqrstuvwxyz")
	assert.Contains(t, out, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.Contains(t, out, "aaa, bbb, ccc")
	assert.Contains(t, out, "search: Success (2 entries)")
}

func TestProbe_Rejected(t *testing.T) {
	addr := startFixture(t)

	_, err := execute(t, context.Background(), "probe", "--address", addr, "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential mismatch")

	_, err = execute(t, context.Background(), "probe", "--address", addr, "--base", "dc=elsewhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown base")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := execute(t, ctx, "serve",
			"--config", filepath.Join(t.TempDir(), "none.yaml"),
			"--address", "127.0.0.1:0",
			"--metrics-address", "127.0.0.1:0",
			"--log-level", "error")
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_InvalidFlag(t *testing.T) {
	_, err := execute(t, context.Background(), "serve",
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--address", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.address")
}

func TestApplyReload(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info", "json")

	oldCfg := config.DefaultConfig()
	newCfg := config.DefaultConfig()
	newCfg.Logging.Level = "debug"

	applyReload(logger, oldCfg, newCfg, false)
	logger.Debug("visible after reload")
	assert.Contains(t, buf.String(), "log level changed")
	assert.Contains(t, buf.String(), "visible after reload")
	assert.NotContains(t, buf.String(), "restart to apply")

	buf.Reset()
	pinned := logging.NewWithWriter(&buf, "info", "json")
	newCfg.Server.ReadBufferSize = 1024
	applyReload(pinned, oldCfg, newCfg, true)
	pinned.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "restart to apply")
}

func TestConfigSchema(t *testing.T) {
	out, err := execute(t, context.Background(), "config", "schema")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "ldapfixture configuration", schema["title"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "server")
	assert.Contains(t, props, "logging")
	assert.Contains(t, props, "metrics")

	path := filepath.Join(t.TempDir(), "schema.json")
	out, err = execute(t, context.Background(), "config", "schema", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "JSON schema written to")
	assert.FileExists(t, path)
}
