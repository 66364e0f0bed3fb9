// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package fetch is the small amount of HTTP plumbing shared by the clients for the various
// upstream data sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultUserAgent = "github.com/datawire/kolla-versions"

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) fillDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// HTTPError is returned for any response that is not "200 OK".
type HTTPError struct {
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

func (c Client) do(ctx context.Context, method, requestURL string, body io.Reader, contentType string) (_ []byte, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%s %q => %w", method, requestURL, err)
		}
	}()
	c.fillDefaults()

	// 1. Build the request
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// 2. Do the networking
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	if err := resp.Body.Close(); err != nil {
		return nil, err
	}

	// 3. Validate the result
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return content, nil
}

// Get returns the body of a "200 OK" response, or an error.
func (c Client) Get(ctx context.Context, requestURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, requestURL, nil, "")
}

// PostForm submits a URL-encoded form and returns the body of a "200 OK" response, or an error.
func (c Client) PostForm(ctx context.Context, requestURL string, data url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, requestURL,
		strings.NewReader(data.Encode()), "application/x-www-form-urlencoded")
}
