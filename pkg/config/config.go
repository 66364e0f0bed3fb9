// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the settings files that drive a report run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	DefaultSettingsFile = "files/configuration.yml"
	DefaultIDsFile      = "files/anitya-ids.yml"

	DefaultImagePrefix     = "ubuntu-source-"
	DefaultKollaNamespace  = "kolla"
	DefaultTagImage        = "kolla-toolbox"
	IndependentReleaseName = "_independent"
)

// Image says where a family of images lives.  The image for a project is
// "[Registry/]Namespace/<prefix><project>:<tag>".
type Image struct {
	Registry  string `yaml:"registry,omitempty"`
	Namespace string `yaml:"namespace"`
	// TagImage is the project whose tag index decides the tag to use for every project.  Only
	// meaningful for images that are not tagged with the Kolla release.
	TagImage string `yaml:"tag_image,omitempty"`
}

type Images struct {
	Prefix     string `yaml:"prefix"`
	Kolla      Image  `yaml:"kolla"`
	Downstream Image  `yaml:"downstream"`
}

// Config is the content of the main settings file.  It is not modified after Load returns.
type Config struct {
	KollaRelease        string   `yaml:"kolla_release"`
	OpenStackRelease    string   `yaml:"openstack_release"`
	IndependentProjects []string `yaml:"independent_projects"`

	// Versions holds literal "current" versions for the projects whose release data is known to
	// be wrong.  Keys use underscores (neutron_lbaas_dashboard).
	Versions map[string]string `yaml:"versions"`

	Services []string          `yaml:"services"`
	Series   map[string]string `yaml:"series"`

	DownstreamVersions map[string]string `yaml:"downstream_versions"`

	Images Images `yaml:"images"`
}

// IsIndependent reports whether the project is released independently of the coordinated release.
func (cfg *Config) IsIndependent(project string) bool {
	for _, independent := range cfg.IndependentProjects {
		if independent == project {
			return true
		}
	}
	return false
}

// ReleaseSeries returns the openstack/releases series that the project's deliverable is filed
// under.
func (cfg *Config) ReleaseSeries(project string) string {
	if cfg.IsIndependent(project) {
		return IndependentReleaseName
	}
	return cfg.OpenStackRelease
}

func (cfg *Config) fillDefaults() {
	if cfg.Images.Prefix == "" {
		cfg.Images.Prefix = DefaultImagePrefix
	}
	if cfg.Images.Kolla.Namespace == "" {
		cfg.Images.Kolla.Namespace = DefaultKollaNamespace
	}
	if cfg.Images.Downstream.TagImage == "" {
		cfg.Images.Downstream.TagImage = DefaultTagImage
	}
}

var (
	ErrNoKollaRelease     = errors.New("kolla_release is not set")
	ErrNoOpenStackRelease = errors.New("openstack_release is not set")
	ErrNoDownstream       = errors.New("services are configured but images.downstream.namespace is not set")
)

// Validate checks that the settings are complete enough to run a report.
func (cfg *Config) Validate() error {
	switch {
	case cfg.KollaRelease == "":
		return ErrNoKollaRelease
	case cfg.OpenStackRelease == "":
		return ErrNoOpenStackRelease
	case len(cfg.Services) > 0 && cfg.Images.Downstream.Namespace == "":
		return ErrNoDownstream
	}
	for project := range cfg.Series {
		found := false
		for _, service := range cfg.Services {
			if service == project {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("series: %q is not listed in services", project)
		}
	}
	return nil
}

func decodeFile(filename string, out interface{}) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(content, out); err != nil {
		return &fs.PathError{
			Op:   "parse",
			Path: filename,
			Err:  err,
		}
	}
	return nil
}

// Parse decodes settings from YAML, rejecting unknown keys.
func Parse(content []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(content)) > 0 {
		if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and validates the main settings file.
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, &fs.PathError{
			Op:   "load settings",
			Path: filename,
			Err:  err,
		}
	}
	return cfg, nil
}

// IDs maps project names to release-monitoring.org project IDs.
type IDs map[string]int

// LoadIDs reads the release-monitoring.org identifier file.
func LoadIDs(filename string) (IDs, error) {
	var ids IDs
	if err := decodeFile(filename, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = IDs{}
	}
	return ids, nil
}
