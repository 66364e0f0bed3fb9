// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs a complete report: load the settings, enumerate the projects bundled by
// Kolla, resolve their current releases, probe the service images, and render the page.
package pipeline

import (
	"context"
	"fmt"

	"github.com/datawire/dlib/dlog"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/datawire/kolla-versions/pkg/anitya"
	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/dockerutil"
	"github.com/datawire/kolla-versions/pkg/dpkg"
	"github.com/datawire/kolla-versions/pkg/fetch"
	"github.com/datawire/kolla-versions/pkg/kolla"
	"github.com/datawire/kolla-versions/pkg/prober"
	"github.com/datawire/kolla-versions/pkg/registry"
	"github.com/datawire/kolla-versions/pkg/releases"
	"github.com/datawire/kolla-versions/pkg/report"
)

// ProbeMode selects how the installed package versions of service images are determined.  It
// implements pflag.Value.
type ProbeMode string

const (
	// ProbeDocker pulls each image and runs dpkg-query in a throwaway container.
	ProbeDocker ProbeMode = "docker"
	// ProbeRegistry reads the dpkg database straight out of the image layers in the registry.
	ProbeRegistry ProbeMode = "registry"
)

func (m ProbeMode) String() string {
	return string(m)
}

func (m *ProbeMode) Set(str string) error {
	switch ProbeMode(str) {
	case ProbeDocker, ProbeRegistry:
		*m = ProbeMode(str)
		return nil
	default:
		return fmt.Errorf("invalid probe mode %q (must be %q or %q)", str, ProbeDocker, ProbeRegistry)
	}
}

func (m *ProbeMode) Type() string {
	return "mode"
}

type Options struct {
	SettingsFile string
	IDsFile      string
	// TemplateFile is empty to use the built-in template.
	TemplateFile string
	Output       string
	Probe        ProbeMode

	// The remaining fields are for pointing the pipeline somewhere other than the public
	// services; their zero values are fine.

	HTTP           fetch.Client
	KollaConfigURL string
	DeliverableURL string
	AnityaURL      string
	NameOptions    []name.Option
	RemoteOptions  []remote.Option
	// Runtime is used in ProbeDocker mode; it defaults to the docker CLI.
	Runtime dockerutil.Runtime
}

// DefaultOptions returns the options for a bare invocation.
func DefaultOptions() Options {
	return Options{
		SettingsFile: config.DefaultSettingsFile,
		IDsFile:      config.DefaultIDsFile,
		Output:       report.DefaultOutput,
		Probe:        ProbeDocker,
	}
}

func (o Options) querier() (dpkg.Querier, error) {
	switch o.Probe {
	case ProbeDocker, "":
		rt := o.Runtime
		if rt == nil {
			rt = dockerutil.CLI{}
		}
		return dpkg.ContainerQuerier{Runtime: rt}, nil
	case ProbeRegistry:
		return dpkg.ImageQuerier{
			NameOptions:   o.NameOptions,
			RemoteOptions: o.RemoteOptions,
		}, nil
	default:
		return nil, fmt.Errorf("invalid probe mode %q", o.Probe)
	}
}

// Run produces a report.  The output file is only touched once everything has been collected and
// rendered.
func Run(ctx context.Context, opts Options) error {
	querier, err := opts.querier()
	if err != nil {
		return err
	}
	tmpl, err := report.Load(opts.TemplateFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.SettingsFile)
	if err != nil {
		return err
	}
	ids, err := config.LoadIDs(opts.IDsFile)
	if err != nil {
		return err
	}
	dlog.Infof(ctx, "Kolla %s, OpenStack %s", cfg.KollaRelease, cfg.OpenStackRelease)

	kollaClient := kolla.Client{Client: opts.HTTP, ConfigURL: opts.KollaConfigURL}
	bundled, err := kollaClient.Projects(ctx, cfg.KollaRelease)
	if err != nil {
		return fmt.Errorf("enumerating projects: %w", err)
	}

	resolver := releases.Resolver{
		Client: releases.Client{Client: opts.HTTP, DeliverableURL: opts.DeliverableURL},
		Config: cfg,
	}
	projects := resolver.Resolve(ctx, bundled)

	p := prober.Prober{
		Config: cfg,
		Upstream: anitya.Client{
			Client: opts.HTTP,
			APIURL: opts.AnityaURL,
			IDs:    ids,
		},
		Index: registry.Client{
			NameOptions:   opts.NameOptions,
			RemoteOptions: opts.RemoteOptions,
		},
		Querier: querier,
	}
	downstreamRelease, services, err := p.ProbeAll(ctx)
	if err != nil {
		return err
	}

	output := opts.Output
	if output == "" {
		output = report.DefaultOutput
	}
	if err := report.WriteFile(output, tmpl, report.NewContext(cfg, projects, services, downstreamRelease)); err != nil {
		return err
	}
	dlog.Infof(ctx, "wrote %s", output)
	return nil
}
