// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package anitya is a client for the version API of Anitya (https://release-monitoring.org/).
package anitya

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/fetch"
	"github.com/datawire/kolla-versions/pkg/version"
)

const DefaultAPIURL = "https://release-monitoring.org/api/version/get"

// Aliases maps service names to the names they are tracked under.
var Aliases = map[string]string{
	"mariadb": "mariadb-galera",
}

// Project is the response of the version API.
type Project struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Versions []string `json:"versions"`
}

var (
	ErrUnknownProject = errors.New("project has no release-monitoring.org ID")
	ErrNoVersion      = errors.New("no version")
)

type Client struct {
	fetch.Client
	// APIURL defaults to DefaultAPIURL.
	APIURL string
	IDs    config.IDs
}

// Get asks for the versions of the project with the given ID.
func (c Client) Get(ctx context.Context, id int) (*Project, error) {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	content, err := c.PostForm(ctx, apiURL, url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}
	var project Project
	if err := json.Unmarshal(content, &project); err != nil {
		return nil, fmt.Errorf("POST %q => %w", apiURL, err)
	}
	return &project, nil
}

// Latest returns the latest release of a project.  If series is non-empty, then the latest
// release within that series is returned instead; the API lists versions newest-first, so that is
// the first listed version whose normalized form starts with the series.
func (c Client) Latest(ctx context.Context, name, series string) (string, error) {
	if alias, ok := Aliases[name]; ok {
		name = alias
	}
	id, ok := c.IDs[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrUnknownProject)
	}
	project, err := c.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if series == "" {
		if project.Version == "" {
			return "", fmt.Errorf("%s: %w", name, ErrNoVersion)
		}
		return project.Version, nil
	}
	ver, ok := FirstInSeries(project.Versions, series)
	if !ok {
		return "", fmt.Errorf("%s: %w in series %s (have %d versions)",
			name, ErrNoVersion, series, len(project.Versions))
	}
	dlog.Debugf(ctx, "%s: latest in series %s is %s", name, series, ver)
	return ver, nil
}

// FirstInSeries returns the first of the versions (in the order given) whose normalized form lies
// in the series.  The result is normalized.
func FirstInSeries(versions []string, series string) (string, bool) {
	for _, ver := range versions {
		if version.HasSeries(ver, series) {
			return version.Normalize(ver), true
		}
	}
	return "", false
}
