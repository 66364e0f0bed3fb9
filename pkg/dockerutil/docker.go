// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package dockerutil drives a container runtime through the docker CLI.
package dockerutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/datawire/dlib/dexec"
)

// Runtime is the subset of container-runtime operations needed to look inside an image.  It is
// not safe for concurrent use: in particular, container names are not unique between calls.
type Runtime interface {
	Pull(ctx context.Context, image string) error
	// Run runs the command in a throwaway container named 'name', and returns the command's
	// stdout with trailing whitespace removed.
	Run(ctx context.Context, image, name string, cmdline ...string) (string, error)
	RemoveImage(ctx context.Context, image string) error
}

// CLI is a Runtime that shells out to `docker`.
type CLI struct {
	// Command defaults to "docker".
	Command string
}

var _ Runtime = CLI{}

func (c CLI) command() string {
	if c.Command == "" {
		return "docker"
	}
	return c.Command
}

func withStderr(err error) error {
	var exitErr *dexec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		err = fmt.Errorf("%w:\n > %s", err,
			strings.Join(strings.Split(strings.TrimRight(string(exitErr.Stderr), "\n"), "\n"), "\n > "))
	}
	return err
}

func (c CLI) Pull(ctx context.Context, image string) error {
	if err := dexec.CommandContext(ctx, c.command(), "image", "pull", "--quiet", image).Run(); err != nil {
		return fmt.Errorf("pulling %s: %w", image, err)
	}
	return nil
}

func (c CLI) Run(ctx context.Context, image, name string, cmdline ...string) (string, error) {
	args := append([]string{"run", "--rm", "--name=" + name, image}, cmdline...)
	bs, err := dexec.CommandContext(ctx, c.command(), args...).Output()
	if err != nil {
		return "", fmt.Errorf("running %q in %s: %w", cmdline, image, withStderr(err))
	}
	return strings.TrimRight(string(bs), " \t\r\n"), nil
}

func (c CLI) RemoveImage(ctx context.Context, image string) error {
	if err := dexec.CommandContext(ctx, c.command(), "image", "rm", image).Run(); err != nil {
		return fmt.Errorf("removing %s: %w", image, err)
	}
	return nil
}

// WithPulledImage pulls an image, calls fn, and then removes the image again.  The image is
// removed even if fn fails; the first error encountered is returned.
func WithPulledImage(
	ctx context.Context,
	rt Runtime,
	image string,
	fn func(context.Context) error,
) (err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	if err := rt.Pull(ctx, image); err != nil {
		return err
	}
	defer func() {
		maybeSetErr(rt.RemoveImage(ctx, image))
	}()
	return fn(ctx)
}
