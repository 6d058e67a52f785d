package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const fixturePDF = "../../testdata/pdf/example.pdf"
const fixtureReport = "../../testdata/reports/violations.xml"

// validatorScript answers like verapdf: the intermediate copy has violations,
// every other file is compliant. The PDF path is the fifth argument.
const validatorScript = `case "$5" in
  *validate.pdf) cat "$REPORT"; exit 1 ;;
  *broken.pdf) echo "java.lang.OutOfMemoryError" >&2; exit 2 ;;
  *) exit 0 ;;
esac`

// getBinaryPath returns the path to the pdfua_fixer binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "pdfua_fixer"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/pdfua_fixer ./cmd/pdfua_fixer'", binaryPath)
	}

	return binaryPath
}

// isolateEnv clears every variable the config layer reads
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PDFUA_VALIDATOR", "PDFUA_VALIDATOR_JAR", "PDFUA_FLAVOUR",
		"PDFUA_VALIDATOR_TIMEOUT", "DATABASE_URL", "PDFUA_METRICS_FILE",
	} {
		t.Setenv(key, "")
	}
}

// fakeValidator writes the scripted validator into dir and returns its path
func fakeValidator(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script validators are not supported on windows")
	}
	report, err := filepath.Abs(fixtureReport)
	require.NoError(t, err)
	t.Setenv("REPORT", report)

	path := filepath.Join(dir, "verapdf")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+validatorScript+"\n"), 0755))
	return path
}

// copyFixture copies the sample PDF into dir under name
func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(fixturePDF)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// resetFlags restores every flag to its default so commands can run repeatedly in-process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// setContext replaces the context on cmd and every subcommand
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, sub := range cmd.Commands() {
		setContext(sub, ctx)
	}
}

// executeCommand runs the root command with args and captures its output
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

// executeCommandContext is executeCommand with a caller-supplied context
func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	// cobra keeps the first context it hands a subcommand; later runs must not inherit it
	setContext(rootCmd, ctx)
	err = rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
