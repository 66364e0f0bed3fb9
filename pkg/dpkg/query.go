// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package dpkg

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/datawire/dlib/dlog"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/datawire/kolla-versions/pkg/dockerutil"
)

// Querier reports the version of a package installed in an image.  'container' names the
// throwaway container, for implementations that need one.
type Querier interface {
	InstalledVersion(ctx context.Context, image, container, pkg string) (string, error)
}

// ContainerQuerier pulls the image, runs dpkg-query in a container, and removes the image again.
type ContainerQuerier struct {
	Runtime dockerutil.Runtime
}

var _ Querier = ContainerQuerier{}

func (q ContainerQuerier) InstalledVersion(ctx context.Context, image, container, pkg string) (string, error) {
	var ver string
	err := dockerutil.WithPulledImage(ctx, q.Runtime, image, func(ctx context.Context) error {
		var err error
		ver, err = q.Runtime.Run(ctx, image, container,
			"dpkg-query", "--showformat=${Version}", "--show", pkg)
		return err
	})
	if err != nil {
		return "", err
	}
	dlog.Infof(ctx, "%s: %s has %s %s", container, image, pkg, ver)
	return ver, nil
}

// ImageQuerier reads the dpkg database straight out of the image's layers in the registry, without
// needing a container runtime.  Nothing is stored locally, so there is nothing to clean up.
type ImageQuerier struct {
	NameOptions []name.Option
	// RemoteOptions default to using the default keychain for authentication.
	RemoteOptions []remote.Option
}

var _ Querier = ImageQuerier{}

func (q ImageQuerier) InstalledVersion(ctx context.Context, image, container, pkg string) (_ string, err error) {
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	ref, err := name.ParseReference(image, q.NameOptions...)
	if err != nil {
		return "", err
	}
	opts := q.RemoteOptions
	if opts == nil {
		opts = []remote.Option{remote.WithAuthFromKeychain(authn.DefaultKeychain)}
	}
	opts = append(opts[:len(opts):len(opts)], remote.WithContext(ctx))

	dlog.Infof(ctx, "%s: reading %s from %s", container, StatusFile, ref)
	img, err := remote.Image(ref, opts...)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", ref, err)
	}

	fsReader := mutate.Extract(img)
	defer func() {
		maybeSetErr(fsReader.Close())
	}()
	tarReader := tar.NewReader(fsReader)
	for {
		header, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("reading %s: %w", ref, err)
		}
		if path.Clean("/" + header.Name)[1:] != StatusFile {
			continue
		}
		ver, err := Lookup(tarReader, pkg)
		if err != nil {
			return "", fmt.Errorf("%s: %w", ref, err)
		}
		dlog.Infof(ctx, "%s: %s has %s %s", container, image, pkg, ver)
		return ver, nil
	}
	return "", fmt.Errorf("%s: no %s in image", ref, StatusFile)
}
