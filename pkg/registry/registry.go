// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package registry knows how Kolla-style images are named, and how to find the newest tag of one.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/datawire/dlib/dlog"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/version"
)

var ErrNoTags = errors.New("repository has no tags")

// RepositoryName returns "[registry/]namespace/<prefix><project>".
func RepositoryName(img config.Image, prefix, project string) string {
	repo := fmt.Sprintf("%s/%s%s", img.Namespace, prefix, project)
	if img.Registry != "" {
		repo = img.Registry + "/" + repo
	}
	return repo
}

type Client struct {
	// NameOptions are used when parsing image references; set name.Insecure to talk plain HTTP.
	NameOptions []name.Option
	// RemoteOptions default to using the default keychain for authentication.
	RemoteOptions []remote.Option
}

func (c Client) remoteOptions(ctx context.Context) []remote.Option {
	opts := c.RemoteOptions
	if opts == nil {
		opts = []remote.Option{remote.WithAuthFromKeychain(authn.DefaultKeychain)}
	}
	return append(opts[:len(opts):len(opts)], remote.WithContext(ctx))
}

// Tags lists the tags of a repository.
func (c Client) Tags(ctx context.Context, repository string) ([]string, error) {
	repo, err := name.NewRepository(repository, c.NameOptions...)
	if err != nil {
		return nil, err
	}
	tags, err := remote.List(repo, c.remoteOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", repo, err)
	}
	return tags, nil
}

// LatestTag returns the greatest tag of a repository under loose version ordering.
func (c Client) LatestTag(ctx context.Context, repository string) (string, error) {
	tags, err := c.Tags(ctx, repository)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("%s: %w", repository, ErrNoTags)
	}
	latest := version.Max(tags)
	dlog.Debugf(ctx, "%s: %d tags, latest is %s", repository, len(tags), latest)
	return latest, nil
}
