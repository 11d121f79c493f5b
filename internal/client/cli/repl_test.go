package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(call string, args ...string) error {
	if len(args) > 0 {
		call += " " + strings.Join(args, " ")
	}
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Accounts(context.Context) error         { return f.record("accounts") }
func (f *fakeExec) Use(_ context.Context, id string) error { return f.record("use", id) }
func (f *fakeExec) Logout(_ context.Context, id string) error {
	f.loggedIn = false
	if id == "" {
		return f.record("logout")
	}
	return f.record("logout", id)
}
func (f *fakeExec) Sync(context.Context) error                 { return f.record("sync") }
func (f *fakeExec) List(_ context.Context, a []string) error   { return f.record("list", a...) }
func (f *fakeExec) Groups(_ context.Context, a []string) error { return f.record("groups", a...) }
func (f *fakeExec) Orgs(context.Context) error                 { return f.record("orgs") }
func (f *fakeExec) Sends(context.Context) error                { return f.record("sends") }
func (f *fakeExec) Search(_ context.Context, a []string) error { return f.record("search", a...) }
func (f *fakeExec) Show(_ context.Context, id string) error    { return f.record("show", id) }
func (f *fakeExec) Kdf(context.Context) error                  { return f.record("kdf") }

// capturePrintln collects everything the REPL prints.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"accounts",
		"use u2",
		"sync",
		"l my",
		"list org o1",
		"groups",
		"orgs",
		"sends",
		"search sends wifi",
		"show i1",
		"kdf",
		"logout",
		"logout u1",
		"foobar",
		"exit",
		"sync",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input))

	require.Equal(t, []string{
		"login", "accounts", "use u2", "sync", "list my", "list org o1", "groups", "orgs", "sends",
		"search sends wifi", "show i1", "kdf", "logout", "logout u1",
	}, exec.calls)

	out := strings.Join(*lines, "\n")
	require.Contains(t, out, "vk (status)> ")
	require.Contains(t, out, "Available commands: login, accounts, use <id>, exit")
	require.Contains(t, out, "show <id>, kdf, exit")
	require.Contains(t, out, "Unknown command: foobar")
	require.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_UsageErrors(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("use\nshow a b\nsearch\n"))

	require.Empty(t, exec.calls)
	out := strings.Join(*lines, "\n")
	require.Contains(t, out, "Usage: use <id>")
	require.Contains(t, out, "Usage: show <id>")
	require.Contains(t, out, "Usage: search [vault|orgs|sends] <query>")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("sync\nkdf"))

	require.Equal(t, []string{"sync", "kdf"}, exec.calls)
	require.Contains(t, *lines, "Error: boom")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("sync\n"))
	require.Empty(t, exec.calls)
}
