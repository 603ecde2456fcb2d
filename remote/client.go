// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package remote queries external data sources: a Gaffer graph-analytics
// service over its REST API, and SPARQL endpoints with DESCRIBE queries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cayleygraph/rdfsail/clog"
)

// ExecutePath is the Gaffer endpoint executing operation chains.
const ExecutePath = "/rest/v2/graph/operations/execute"

// RequestError is returned when a remote service answers with a non-200
// status.
type RequestError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Status)
}

// Client talks to a Gaffer REST service.
type Client struct {
	addr string
	cli  *http.Client
}

// New creates a client for the service at addr, e.g. http://localhost:8080.
func New(addr string) *Client {
	return &Client{addr: strings.TrimSuffix(addr, "/"), cli: http.DefaultClient}
}

func (c *Client) SetHTTPClient(cli *http.Client) {
	c.cli = cli
}

func (c *Client) Addr() string { return c.addr }

func (c *Client) url(s string, q map[string]string) string {
	addr := c.addr + s
	if len(q) != 0 {
		p := make(url.Values, len(q))
		for k, v := range q {
			p.Set(k, v)
		}
		addr += "?" + p.Encode()
	}
	return addr
}

// Execute runs an operation chain and decodes the returned elements.
func (c *Client) Execute(ctx context.Context, chain Chain) ([]Element, error) {
	data, err := json.Marshal(chain)
	if err != nil {
		return nil, err
	}
	u := c.url(ExecutePath, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	var out []Element
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("cannot decode elements from %s: %w", u, err)
	}
	remoteElements.Add(float64(len(out)))
	if clog.V(2) {
		clog.Infof("remote: %d elements from %s", len(out), u)
	}
	return out, nil
}
