package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/cli"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/testutil"
)

// execute runs the CLI with an isolated environment file and returns both
// streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errW bytes.Buffer
	args = append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
	err := cli.Execute(context.Background(), args, &out, &errW)
	return out.String(), errW.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code, "message: %s", exitErr.Message)
	return exitErr
}

func TestNewRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, "bndl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
	for _, name := range []string{"check", "compile", "export", "inspect", "apply", "serve"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}
	for _, name := range []string{"config", "env-file", "log-level", "log-format", "cache-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "compile")
}

func TestExecute_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	files := testutil.WriteFiles(t, dir, map[string]string{"twist.bndl": testutil.TwistSource})
	src := files["twist.bndl"]

	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"check", "--bogus", src}},
		{name: "unknown command", args: []string{"bogus"}},
		{name: "missing file argument", args: []string{"compile"}},
		{name: "too many arguments", args: []string{"inspect", src, src}},
		{name: "unknown plan format", args: []string{"compile", "-f", "yaml", src}},
		{name: "invalid log level", args: []string{"--log-level", "loud", "check", src}},
		{name: "missing config file", args: []string{"--config", filepath.Join(dir, "nope.hcl"), "check", src}},
		{name: "remote builder without url", args: []string{"apply", "--builder", "remote", src}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			requireExitCode(t, err, cli.ExitUsage)
		})
	}
}

func TestCheck(t *testing.T) {
	files := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"good.bndl":   testutil.TwistSource,
		"broken.bndl": testutil.BrokenSource,
	})

	out, errOut, err := execute(t, "check", files["good.bndl"], files["broken.bndl"])

	exitErr := requireExitCode(t, err, cli.ExitFailure)
	assert.Equal(t, "1 of 2 files failed", exitErr.Message)
	assert.Contains(t, out, files["good.bndl"]+" (8 ops)")
	assert.Contains(t, errOut, "line 2")
}

func TestCompile_JSONToStdout(t *testing.T) {
	files := testutil.WriteFiles(t, t.TempDir(), map[string]string{"twist.bndl": testutil.TwistSource})

	out, _, err := execute(t, "compile", files["twist.bndl"])
	require.NoError(t, err)

	p, err := plan.DecodeJSON(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	var got []string
	for _, op := range p.Ops {
		got = append(got, op.String())
	}
	assert.Equal(t, testutil.TwistOps, got)
}

func TestCompile_OutputDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"src/a.bndl": testutil.TwistSource,
		"src/b.bndl": testutil.TwistSource,
	})
	outDir := filepath.Join(dir, "plans")

	_, _, err := execute(t, "compile", "-f", "msgpack", "-o", outDir, "--no-cache", filepath.Join(dir, "src"))
	require.NoError(t, err)

	for _, name := range []string{"a.msgpack", "b.msgpack"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		p, err := plan.UnmarshalMsgpack(data)
		require.NoError(t, err)
		assert.Len(t, p.Ops, len(testutil.TwistOps))
	}
}

func TestCompile_HCLToFile(t *testing.T) {
	dir := t.TempDir()
	files := testutil.WriteFiles(t, dir, map[string]string{"twist.bndl": testutil.TwistSource})
	target := filepath.Join(dir, "out", "twist.plan.hcl")

	_, _, err := execute(t, "compile", "-f", "hcl", "-o", target, files["twist.bndl"])
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `create_node "#1"`)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	files := testutil.WriteFiles(t, dir, map[string]string{"twist.yaml": testutil.TwistSnapshot})
	target := filepath.Join(dir, "twist.bndl")

	_, _, err := execute(t, "export", "-o", target, files["twist.yaml"])
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# BNDL v1\n")
	assert.Contains(t, string(data), "BEGIN GROUP NAMED Twist")

	_, _, err = execute(t, "check", target)
	assert.NoError(t, err, "exported text compiles")
}

func TestExport_MissingSnapshot(t *testing.T) {
	_, _, err := execute(t, "export", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)

	var exitErr *cli.ExitError
	assert.False(t, errors.As(err, &exitErr), "runtime failures keep their own error")
}

func TestInspect(t *testing.T) {
	files := testutil.WriteFiles(t, t.TempDir(), map[string]string{"twist.bndl": testutil.TwistSource})

	out, _, err := execute(t, "inspect", files["twist.bndl"])
	require.NoError(t, err)

	assert.Contains(t, out, "GeometryNodeMeshGrid")
	assert.Contains(t, out, "Mesh Grid")
	assert.Contains(t, out, "Twist#1")
	assert.Contains(t, out, "4 nodes, 0 zones, 2 links, 2 values (1 user), 0 interface ops")
}

func TestApply_Memory(t *testing.T) {
	files := testutil.WriteFiles(t, t.TempDir(), map[string]string{"twist.bndl": testutil.TwistSource})

	out, _, err := execute(t, "apply", files["twist.bndl"])
	require.NoError(t, err)

	assert.Contains(t, out, "CreateNode(#1, GeometryNodeMeshGrid)")
	assert.Contains(t, out, "8 operations, 0 failed")
}

func TestConfigLayering(t *testing.T) {
	dir := t.TempDir()
	files := testutil.WriteFiles(t, dir, map[string]string{
		"twist.bndl": testutil.TwistSource,
		"bndl.hcl":   "log {\n  level = \"debug\"\n}\n",
		"bad.env":    "BNDL_WORKERS=many\n",
	})
	const debugLine = "Logger configured successfully."

	t.Run("config file", func(t *testing.T) {
		_, errOut, err := execute(t, "--config", files["bndl.hcl"], "check", files["twist.bndl"])
		require.NoError(t, err)
		assert.Contains(t, errOut, debugLine)
	})

	t.Run("environment over config file", func(t *testing.T) {
		t.Setenv("BNDL_LOG_LEVEL", "warn")
		_, errOut, err := execute(t, "--config", files["bndl.hcl"], "check", files["twist.bndl"])
		require.NoError(t, err)
		assert.NotContains(t, errOut, debugLine)
	})

	t.Run("flag over environment", func(t *testing.T) {
		t.Setenv("BNDL_LOG_LEVEL", "warn")
		_, errOut, err := execute(t, "--log-level", "debug", "check", files["twist.bndl"])
		require.NoError(t, err)
		assert.Contains(t, errOut, debugLine)
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv("BNDL_WORKERS", "many")
		_, _, err := execute(t, "check", files["twist.bndl"])
		requireExitCode(t, err, cli.ExitUsage)
	})

	t.Run("dotenv file", func(t *testing.T) {
		// Registers cleanup for the variable the dotenv file sets.
		t.Setenv("BNDL_WORKERS", "")
		require.NoError(t, os.Unsetenv("BNDL_WORKERS"))

		_, _, err := execute(t, "--env-file", files["bad.env"], "check", files["twist.bndl"])
		requireExitCode(t, err, cli.ExitUsage)
	})
}
