// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package prober determines the versions of the infrastructure services (databases, brokers, ...)
// that ship alongside OpenStack: the latest upstream release, the version in the Kolla image, and
// the version in the downstream image.
package prober

import (
	"context"
	"fmt"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/dpkg"
	"github.com/datawire/kolla-versions/pkg/inventory"
	"github.com/datawire/kolla-versions/pkg/registry"
	"github.com/datawire/kolla-versions/pkg/version"
)

// Packages maps service names to the Debian package that provides the service, where the two
// differ.
var Packages = map[string]string{
	"rabbitmq": "rabbitmq-server",
	// NOTE: this becomes "mariadb-server" with MariaDB 10.1
	"mariadb": "mariadb-galera-server",
	"mongodb": "mongodb-server",
}

// PackageName applies Packages.
func PackageName(service string) string {
	if pkg, ok := Packages[service]; ok {
		return pkg
	}
	return service
}

// UpstreamSource knows the latest upstream release of a service; see anitya.Client.
type UpstreamSource interface {
	Latest(ctx context.Context, name, series string) (string, error)
}

// ImageIndex knows where images live and how they are tagged; see registry.Client.
type ImageIndex interface {
	LatestTag(ctx context.Context, repository string) (string, error)
}

type Prober struct {
	Config   *config.Config
	Upstream UpstreamSource
	Index    ImageIndex
	Querier  dpkg.Querier
}

func (p Prober) image(img config.Image, project, tag string) string {
	return registry.RepositoryName(img, p.Config.Images.Prefix, project) + ":" + tag
}

// DownstreamRelease returns the tag of the newest downstream images.
func (p Prober) DownstreamRelease(ctx context.Context) (string, error) {
	img := p.Config.Images.Downstream
	tag, err := p.Index.LatestTag(ctx, registry.RepositoryName(img, p.Config.Images.Prefix, img.TagImage))
	if err != nil {
		return "", fmt.Errorf("determining downstream release: %w", err)
	}
	dlog.Infof(ctx, "latest available downstream image tag is %s", tag)
	return tag, nil
}

// Probe determines the versions of a single service.  downstreamRelease is the result of
// DownstreamRelease.
func (p Prober) Probe(ctx context.Context, service, downstreamRelease string) (*inventory.Record, error) {
	pkg := PackageName(service)

	current, err := p.Upstream.Latest(ctx, service, p.Config.Series[service])
	if err != nil {
		return nil, err
	}

	kolla, err := p.Querier.InstalledVersion(ctx,
		p.image(p.Config.Images.Kolla, service, p.Config.KollaRelease), service, pkg)
	if err != nil {
		return nil, err
	}

	downstream, err := p.Querier.InstalledVersion(ctx,
		p.image(p.Config.Images.Downstream, service, downstreamRelease), service, pkg)
	if err != nil {
		return nil, err
	}

	return &inventory.Record{
		Name:       service,
		Current:    version.Normalize(current),
		Kolla:      version.Normalize(kolla),
		Downstream: version.Normalize(downstream),
	}, nil
}

// ProbeAll probes every configured service, one at a time.  Any failure aborts.
func (p Prober) ProbeAll(ctx context.Context) (downstreamRelease string, _ map[string]*inventory.Record, _ error) {
	records := make(map[string]*inventory.Record, len(p.Config.Services))
	if len(p.Config.Services) == 0 {
		return "", records, nil
	}
	downstreamRelease, err := p.DownstreamRelease(ctx)
	if err != nil {
		return "", nil, err
	}
	for _, service := range p.Config.Services {
		record, err := p.Probe(ctx, service, downstreamRelease)
		if err != nil {
			return "", nil, fmt.Errorf("probing %s: %w", service, err)
		}
		dlog.Infof(ctx, "%s: current=%s kolla=%s downstream=%s",
			service, record.Current, record.Kolla, record.Downstream)
		records[service] = record
	}
	return downstreamRelease, records, nil
}
