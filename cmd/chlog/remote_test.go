package main

import (
	"fmt"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/sosedoff/gitkit"
)

func TestGenerateRemote(t *testing.T) {
	requireGit(t)
	if runtime.GOOS == "windows" {
		t.Skip("windows not supported (gitkit uses syscall.Kill)")
	}

	srv := newGitServer(t)
	defer srv.stop(t)

	dir := setupRepo(t, releaseOps)
	url := fmt.Sprintf("http://%s/chlog.git", srv.http.Listener.Addr())
	call(t, dir, testStart, "push", "--quiet", url, "master:refs/heads/master", "master:refs/heads/main", "--tags")

	tcs := []struct {
		name string
		args []string
	}{
		{
			name: "git",
			args: strs("--remote", url, "--stdout", "--format", "markdown"),
		},
		{
			name: "go-git",
			args: strs("--remote", url, "--stdout", "--format", "markdown", "--backend", "go-git"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			res := callChlog(t, "", tc.args...)
			if res.err != nil {
				t.Fatalf("%v\n%s", res.err, res.stderr)
			}
			for _, expect := range strs(
				"## [Unreleased]\n\n### Documentation\n\n- Describe widgets\n",
				"## [v0.2.0] - 2026-01-05\n\n### Added\n\n- Add widgets\n",
				"## [v0.1.0] - 2026-01-02\n\n### Other\n\n- Initial commit\n",
			) {
				if !strings.Contains(res.stdout, expect) {
					t.Errorf("expected output to contain %q, got:\n%s", expect, res.stdout)
				}
			}
		})
	}
}

func TestGenerateRemoteEmpty(t *testing.T) {
	requireGit(t)
	if runtime.GOOS == "windows" {
		t.Skip("windows not supported (gitkit uses syscall.Kill)")
	}

	srv := newGitServer(t)
	defer srv.stop(t)

	// the server creates an empty repository on first access.
	url := fmt.Sprintf("http://%s/empty.git", srv.http.Listener.Addr())
	for _, backend := range strs("git", "go-git") {
		res := callChlog(t, "", "--remote", url, "--stdout", "--backend", backend)
		if res.err == nil {
			t.Errorf("%s: expected empty remote to fail", backend)
		}
	}
}

type gitServer struct {
	dir  string
	svc  *gitkit.Server
	http *httptest.Server
}

// newGitServer starts a smart http git server. Repositories are created when
// they are first pushed to.
func newGitServer(t *testing.T) *gitServer {
	t.Helper()
	dir := t.TempDir()
	svc := gitkit.New(gitkit.Config{
		Dir:        dir,
		AutoCreate: true,
	})
	if err := svc.Setup(); err != nil {
		t.Fatal(err)
	}

	srv := &gitServer{dir: dir, svc: svc}
	srv.http = httptest.NewServer(svc)
	t.Logf("Test git server listening: %s", srv.http.Listener.Addr())
	return srv
}

func (g *gitServer) stop(t *testing.T) {
	t.Logf("Stopping git server in %s", g.dir)
	g.http.Close()
}
