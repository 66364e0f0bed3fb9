// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package kolla reads the set of OpenStack projects (and the versions of them) that a Kolla
// release builds its images from.
package kolla

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/kolla-versions/pkg/fetch"
)

// DefaultConfigURL is the location of the Kolla build configuration; "%s" is the Kolla release.
const DefaultConfigURL = "https://raw.githubusercontent.com/openstack/kolla/%s/kolla/common/config.py"

// Aliases maps source tarball names to the project names used everywhere else.
var Aliases = map[string]string{
	"python-watcher": "watcher",
	"kuryr-lib":      "kuryr",
}

// ProjectName applies Aliases.
func ProjectName(tarball string) string {
	if alias, ok := Aliases[tarball]; ok {
		return alias
	}
	return tarball
}

var reTarball = regexp.MustCompile(`([a-z-]+)-(\d+\.\d+\.\d+).*\.tar\.gz`)

// ParseLine extracts the project and version from a line of the build configuration that
// references a source tarball.  Lines that reference the global requirements tarball are not
// projects.
func ParseLine(line string) (project, version string, ok bool) {
	if !strings.Contains(line, "tar.gz") || strings.Contains(line, "requirements") {
		return "", "", false
	}
	match := reTarball.FindStringSubmatch(line)
	if match == nil {
		return "", "", false
	}
	return ProjectName(match[1]), match[2], true
}

// Parse scans a build configuration and returns the bundled version of each project.  If a
// project is listed more than once, the last listing wins.
func Parse(ctx context.Context, r io.Reader) (map[string]string, error) {
	projects := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		project, version, ok := ParseLine(line)
		if !ok {
			if strings.Contains(line, "tar.gz") && !strings.Contains(line, "requirements") {
				dlog.Debugf(ctx, "line %d: ignoring unrecognized tarball: %s", lineno, strings.TrimSpace(line))
			}
			continue
		}
		projects[project] = version
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

type Client struct {
	fetch.Client
	// ConfigURL is a format string that takes the Kolla release; it defaults to DefaultConfigURL.
	ConfigURL string
}

// Projects downloads the build configuration for a Kolla release and parses it.  Failing to fetch
// the document is an error; finding no projects in it is not.
func (c Client) Projects(ctx context.Context, release string) (map[string]string, error) {
	urlFmt := c.ConfigURL
	if urlFmt == "" {
		urlFmt = DefaultConfigURL
	}
	content, err := c.Get(ctx, fmt.Sprintf(urlFmt, release))
	if err != nil {
		return nil, fmt.Errorf("fetching kolla %s build configuration: %w", release, err)
	}
	projects, err := Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	dlog.Infof(ctx, "kolla %s bundles %d projects", release, len(projects))
	return projects, nil
}
