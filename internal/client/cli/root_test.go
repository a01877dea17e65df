package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls      []string
	selectArgs []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Clients(ctx context.Context) error {
	f.calls = append(f.calls, "clients")
	return nil
}
func (f *fakeExec) Areas(ctx context.Context) error {
	f.calls = append(f.calls, "areas")
	return nil
}
func (f *fakeExec) Points(ctx context.Context) error {
	f.calls = append(f.calls, "points")
	return nil
}
func (f *fakeExec) Types(ctx context.Context) error {
	f.calls = append(f.calls, "types")
	return nil
}
func (f *fakeExec) Select(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "select")
	f.selectArgs = args
	return nil
}
func (f *fakeExec) Submit(ctx context.Context) error {
	f.calls = append(f.calls, "submit")
	return nil
}
func (f *fakeExec) Pending(ctx context.Context) error {
	f.calls = append(f.calls, "pending")
	return nil
}
func (f *fakeExec) Sync(ctx context.Context) error { f.calls = append(f.calls, "sync"); return nil }
func (f *fakeExec) Dismiss(ctx context.Context) error {
	f.calls = append(f.calls, "dismiss")
	return nil
}
func (f *fakeExec) Version(ctx context.Context) error {
	f.calls = append(f.calls, "version")
	return nil
}
func (f *fakeExec) Reset(ctx context.Context) error {
	f.calls = append(f.calls, "reset")
	return nil
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) {
		var parts []string
		for _, a := range args {
			if s, ok := a.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchAndExit(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"clients",
		"select client 42",
		"areas",
		"points",
		"types",
		"submit",
		"pending",
		"sync",
		"dismiss",
		"version",
		"",
		"foobar",
		"exit",
		"clients", // never reached
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, bufio.NewScanner(input))

	want := []string{"login", "clients", "select", "areas", "points", "types",
		"submit", "pending", "sync", "dismiss", "version"}
	assert.Equal(t, want, exec.calls)
	assert.Equal(t, []string{"client", "42"}, exec.selectArgs)
}

func TestRunREPL_UnknownCommandReported(t *testing.T) {
	lines := silencePrintln(t)

	input := strings.NewReader("frobnicate\nexit\n")
	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewScanner(input))

	found := false
	for _, l := range *lines {
		if strings.Contains(l, "Unknown command") {
			found = true
		}
	}
	require.True(t, found)
}

func TestRunREPL_EOFStopsLoop(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("clients")))

	assert.Equal(t, []string{"clients"}, exec.calls)
}
