package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/todo/internal/config"
	"github.com/evanschultz/todo/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("TODO_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram represents program data used to exercise model flows inside run() tests.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

// Run runs scripted model interactions and returns the final state.
func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

// isolatePaths points platform path resolution at a temp dir.
func isolatePaths(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("TODO_CONFIG", "")
	return base
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "todo") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies behavior for the covered scenario.
func TestRunStartsProgram(t *testing.T) {
	isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ context.Context, _ tea.Model) program {
		return fakeProgram{}
	}

	cfgPath := filepath.Join(t.TempDir(), "missing.toml")
	if err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRunPropagatesProgramError verifies behavior for the covered scenario.
func TestRunPropagatesProgramError(t *testing.T) {
	isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ context.Context, _ tea.Model) program {
		return fakeProgram{runErr: errors.New("tty gone")}
	}

	err := run(context.Background(), nil, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunSeedsTasksAndAppliesConfig verifies behavior for the covered scenario.
func TestRunSeedsTasksAndAppliesConfig(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ui]
title = "Chores"

[keys]
toggle = "space"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	var rendered string
	programFactory = func(_ context.Context, model tea.Model) program {
		return scriptedProgram{
			model: model,
			runFn: func(m tea.Model) (tea.Model, error) {
				m = applyModelMsg(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
				m = applyModelMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
				m = applyModelMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
				rendered = m.View().Content.(interface{ String() string }).String()
				return m, nil
			},
		}
	}

	args := []string{"--config", cfgPath, "Buy milk", "   ", "Walk dog"}
	if err := run(context.Background(), args, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"Chores", "[x]", "Walk dog", "2 tasks • 1 done"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in rendered view, got %q", want, rendered)
		}
	}
}

// TestRunRejectsInvalidConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidConfig(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ context.Context, _ tea.Model) program {
		t.Fatal("program should not start with invalid config")
		return fakeProgram{}
	}

	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected config load error, got %v", err)
	}
}

// TestRunAcceptsPaddedLogLevel verifies a level that passes validation also configures the logger.
func TestRunAcceptsPaddedLogLevel(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \" debug \"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	started := false
	programFactory = func(_ context.Context, _ tea.Model) program {
		started = true
		return fakeProgram{}
	}

	if err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !started {
		t.Fatal("expected program to start")
	}
}

// TestRunConfigEnvOverride verifies behavior for the covered scenario.
func TestRunConfigEnvOverride(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "env.toml")
	if err := os.WriteFile(cfgPath, []byte("[delete]\nmatch = \"bogus\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("TODO_CONFIG", cfgPath)

	err := run(context.Background(), []string{"keys", "--raw"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), cfgPath) {
		t.Fatalf("expected env config path to be loaded, got %v", err)
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--definitely-not-a-flag"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected flag parsing error")
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	base := isolatePaths(t)
	var out strings.Builder
	if err := run(context.Background(), []string{"paths", "--app", "chores"}, &out, io.Discard); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"app: chores", "dev_mode: false", "config: ", "data_dir: ", "log_dir: "} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in paths output, got %q", want, got)
		}
	}
	if !strings.Contains(got, base) {
		t.Fatalf("expected isolated base %q in paths output, got %q", base, got)
	}
}

// TestRunKeysCommand verifies behavior for the covered scenario.
func TestRunKeysCommand(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[keys]\ndelete = \"D\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var raw strings.Builder
	if err := run(context.Background(), []string{"keys", "--raw", "--config", cfgPath}, &raw, io.Discard); err != nil {
		t.Fatalf("run(keys --raw) error = %v", err)
	}
	if !strings.Contains(raw.String(), "| `D` | delete task |") {
		t.Fatalf("expected configured delete key in markdown, got %q", raw.String())
	}

	var styled strings.Builder
	if err := run(context.Background(), []string{"keys", "--style", "notty", "--config", cfgPath}, &styled, io.Discard); err != nil {
		t.Fatalf("run(keys) error = %v", err)
	}
	if !strings.Contains(styled.String(), "delete task") {
		t.Fatalf("expected rendered key table, got %q", styled.String())
	}
}

// TestRunInitConfigCommand verifies behavior for the covered scenario.
func TestRunInitConfigCommand(t *testing.T) {
	isolatePaths(t)
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.toml")

	var out strings.Builder
	if err := run(context.Background(), []string{"init-config", "--config", cfgPath}, &out, io.Discard); err != nil {
		t.Fatalf("run(init-config) error = %v", err)
	}
	if !strings.Contains(out.String(), "wrote "+cfgPath) {
		t.Fatalf("unexpected init-config output %q", out.String())
	}
	cfg, err := config.Load(cfgPath, config.Config{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Title != "TO-DO" {
		t.Fatalf("expected default title in written config, got %q", cfg.UI.Title)
	}

	out.Reset()
	if err := run(context.Background(), []string{"init-config", "--config", cfgPath}, &out, io.Discard); err != nil {
		t.Fatalf("run(init-config again) error = %v", err)
	}
	if !strings.Contains(out.String(), "kept existing") {
		t.Fatalf("unexpected second init-config output %q", out.String())
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("TODO_BOOL_TEST", "true")
	if v, ok := parseBoolEnv("TODO_BOOL_TEST"); !ok || !v {
		t.Fatalf("expected true, got %t ok=%t", v, ok)
	}
	t.Setenv("TODO_BOOL_TEST", "not-bool")
	if _, ok := parseBoolEnv("TODO_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool to be ignored")
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	isolatePaths(t)
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ context.Context, model tea.Model) program {
		return scriptedProgram{
			model: model,
			runFn: func(m tea.Model) (tea.Model, error) {
				m = applyModelMsg(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
				m = applyModelMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
				m = applyModelMsg(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})
				return m, nil
			},
		}
	}

	workspace := t.TempDir()
	t.Chdir(workspace)
	cfgPath := filepath.Join(workspace, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--config", cfgPath, "Buy milk"}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".todo", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	logOutput := string(content)
	for _, want := range []string{"starting tui program loop", "task list transition", "op=toggle_complete"} {
		if !strings.Contains(logOutput, want) {
			t.Fatalf("expected %q in runtime log file, got %q", want, logOutput)
		}
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "todo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePath verifies relative log dirs anchor at workspace root and empty dirs fall back.
func TestDevLogFilePath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "todo")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)
	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

	got, err := devLogFilePath(".todo/log", "", "todo", now)
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	want := filepath.Join(root, ".todo", "log", "todo-20260222.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected log path %q, got %q", want, got)
	}

	fallback := filepath.Join(t.TempDir(), "logs")
	got, err = devLogFilePath("  ", fallback, "my app", now)
	if err != nil {
		t.Fatalf("devLogFilePath(fallback) error = %v", err)
	}
	if got != filepath.Join(fallback, "my-app-20260222.log") {
		t.Fatalf("unexpected fallback log path %q", got)
	}
}

// TestSanitizeLogFileStem verifies behavior for the covered scenario.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"todo":     "todo",
		" a/b:c ":  "a-b-c",
		"///":      "todo",
		"":         "todo",
		"todo-dev": "todo-dev",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies console output can be suppressed while other sinks remain active.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default().Logging

	logger, err := newRuntimeLogger(&console, "todo", false, cfg, "", func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.Debug("hidden")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include before/after, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info level to drop debug output, got %q", out)
	}
}

// TestToTUIKeyConfig verifies behavior for the covered scenario.
func TestToTUIKeyConfig(t *testing.T) {
	got := toTUIKeyConfig(config.Default().Keys)
	want := tui.KeyConfig{Add: "a", Toggle: "x", Edit: "e", Delete: "d", Clear: "C", Grab: "m", Copy: "y"}
	if got != want {
		t.Fatalf("toTUIKeyConfig() = %#v, want %#v", got, want)
	}
}

// applyModelMsg applies one message without draining cursor blink commands.
func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, _ := model.Update(msg)
	return updated
}
