// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package dockerutil_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/kolla-versions/pkg/dockerutil"
)

type fakeRuntime struct {
	calls   []string
	pullErr error
	rmErr   error
}

func (f *fakeRuntime) Pull(_ context.Context, image string) error {
	f.calls = append(f.calls, "pull "+image)
	return f.pullErr
}

func (f *fakeRuntime) Run(_ context.Context, image, name string, cmdline ...string) (string, error) {
	f.calls = append(f.calls, fmt.Sprintf("run %s %s %s", name, image, strings.Join(cmdline, " ")))
	return "", nil
}

func (f *fakeRuntime) RemoveImage(_ context.Context, image string) error {
	f.calls = append(f.calls, "rm "+image)
	return f.rmErr
}

func TestWithPulledImage(t *testing.T) {
	t.Parallel()
	errFn := errors.New("fn failed")
	errRm := errors.New("rm failed")
	errPull := errors.New("pull failed")
	type testcase struct {
		Runtime       *fakeRuntime
		FnErr         error
		ExpectedErr   error
		ExpectedCalls []string
	}
	testcases := map[string]testcase{
		"ok": {
			Runtime:       &fakeRuntime{},
			ExpectedCalls: []string{"pull img", "fn", "rm img"},
		},
		"fn-fails": {
			Runtime:       &fakeRuntime{},
			FnErr:         errFn,
			ExpectedErr:   errFn,
			ExpectedCalls: []string{"pull img", "fn", "rm img"},
		},
		"rm-fails": {
			Runtime:       &fakeRuntime{rmErr: errRm},
			ExpectedErr:   errRm,
			ExpectedCalls: []string{"pull img", "fn", "rm img"},
		},
		"both-fail": {
			Runtime:       &fakeRuntime{rmErr: errRm},
			FnErr:         errFn,
			ExpectedErr:   errFn,
			ExpectedCalls: []string{"pull img", "fn", "rm img"},
		},
		"pull-fails": {
			Runtime:       &fakeRuntime{pullErr: errPull},
			ExpectedErr:   errPull,
			ExpectedCalls: []string{"pull img"},
		},
	}
	for tcName, tcData := range testcases {
		tcData := tcData
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ctx := dlog.NewTestContext(t, true)
			err := dockerutil.WithPulledImage(ctx, tcData.Runtime, "img", func(context.Context) error {
				tcData.Runtime.calls = append(tcData.Runtime.calls, "fn")
				return tcData.FnErr
			})
			if tcData.ExpectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tcData.ExpectedErr)
			}
			assert.Equal(t, tcData.ExpectedCalls, tcData.Runtime.calls)
		})
	}
}

// fakeDocker writes a shell script that logs its arguments and behaves just enough like docker.
func fakeDocker(t *testing.T) (cli dockerutil.CLI, logfile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake docker is a shell script")
	}
	dir := t.TempDir()
	logfile = filepath.Join(dir, "calls.log")
	script := `#!/bin/sh
echo "$*" >>'` + logfile + `'
case "$1" in
  run)
    for last; do :; done
    if [ "$last" = missing ]; then
      echo "dpkg-query: no packages found matching missing" >&2
      exit 1
    fi
    printf '1:10.0.29-0ubuntu1  \n'
    ;;
esac
`
	cmd := filepath.Join(dir, "docker")
	require.NoError(t, os.WriteFile(cmd, []byte(script), 0o755))
	return dockerutil.CLI{Command: cmd}, logfile
}

func readLines(t *testing.T, filename string) []string {
	t.Helper()
	bs, err := os.ReadFile(filename)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(bs), "\n"), "\n")
}

func TestCLI(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	cli, logfile := fakeDocker(t)

	require.NoError(t, cli.Pull(ctx, "kolla/ubuntu-source-mariadb:4.0.0"))
	out, err := cli.Run(ctx, "kolla/ubuntu-source-mariadb:4.0.0", "mariadb",
		"dpkg-query", "--showformat=${Version}", "--show", "mariadb-galera-server")
	require.NoError(t, err)
	assert.Equal(t, "1:10.0.29-0ubuntu1", out)
	require.NoError(t, cli.RemoveImage(ctx, "kolla/ubuntu-source-mariadb:4.0.0"))

	_, err = cli.Run(ctx, "kolla/ubuntu-source-mariadb:4.0.0", "mariadb",
		"dpkg-query", "--showformat=${Version}", "--show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no packages found")

	assert.Equal(t, []string{
		"image pull --quiet kolla/ubuntu-source-mariadb:4.0.0",
		"run --rm --name=mariadb kolla/ubuntu-source-mariadb:4.0.0 dpkg-query --showformat=${Version} --show mariadb-galera-server",
		"image rm kolla/ubuntu-source-mariadb:4.0.0",
		"run --rm --name=mariadb kolla/ubuntu-source-mariadb:4.0.0 dpkg-query --showformat=${Version} --show missing",
	}, readLines(t, logfile))
}
