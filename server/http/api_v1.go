// Copyright 2017 The Cayley Authors. All rights reserved.
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

// Package sailhttp serves the plugin registry and the statement store over
// HTTP.
package sailhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/graph"
	"github.com/cayleygraph/rdfsail/internal"
	"github.com/cayleygraph/rdfsail/materialize"
	"github.com/cayleygraph/rdfsail/plugin"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

const (
	prefix = "/api/v1"

	// importPlugin names the graph transactions of model uploads.
	importPlugin = "http-import"
)

// API serves one store, its graph and a plugin registry. Plugin runs and
// uploads are serialized.
type API struct {
	store   *sail.Store
	graph   *graph.Graph
	plugins *plugin.Registry
	handler http.Handler

	mu      sync.Mutex
	ro      bool
	batch   int
	timeout time.Duration
	params  plugin.Values
	changed func()
}

// NewAPI creates a new API over store and g. The registry may be nil.
func NewAPI(store *sail.Store, g *graph.Graph, plugins *plugin.Registry) *API {
	if plugins == nil {
		plugins, _ = plugin.NewRegistry()
	}
	api := &API{store: store, graph: g, plugins: plugins, batch: quad.DefaultBatch}
	r := httprouter.New()
	api.registerOn(r)
	api.handler = r
	return api
}

func (api *API) SetReadOnly(ro bool) {
	api.ro = ro
}
func (api *API) SetBatchSize(n int) {
	api.batch = n
}

// SetTimeout bounds the duration of plugin runs.
func (api *API) SetTimeout(dt time.Duration) {
	api.timeout = dt
}

// SetDefaultParams sets parameters passed to every plugin accepting them
// unless the request overrides them.
func (api *API) SetDefaultParams(v plugin.Values) {
	api.params = v
}

// OnChange registers a function called after every successful write.
func (api *API) OnChange(fn func()) {
	api.changed = fn
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.handler.ServeHTTP(w, r)
}

func toHandle(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handler(w, r)
	}
}

func (api *API) registerOn(r *httprouter.Router) {
	r.GET(prefix+"/plugins", toHandle(api.ServePlugins))
	r.POST(prefix+"/plugins/:name", api.ServeRun)
	r.GET(prefix+"/model", toHandle(api.ServeModel))
	r.POST(prefix+"/model", toHandle(api.ServeWrite))
	r.OPTIONS(prefix+"/*path", toHandle(HandlePreflight))
	r.GET("/health", toHandle(HandleHealth))
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

// HandleHealth is a route for handling health checks to the server
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type pluginInfo struct {
	Name       string        `json:"name"`
	Kind       plugin.Kind   `json:"kind"`
	Parameters plugin.Schema `json:"parameters,omitempty"`
}

func (api *API) ServePlugins(w http.ResponseWriter, r *http.Request) {
	ps := api.plugins.Plugins()
	out := make([]pluginInfo, 0, len(ps))
	for _, p := range ps {
		out = append(out, pluginInfo{Name: p.Name(), Kind: p.Kind(), Parameters: p.Parameters()})
	}
	writeJSON(w, http.StatusOK, out)
}

type runRequest struct {
	Parameters plugin.Values      `json:"parameters"`
	Records    *recordstore.Store `json:"records,omitempty"`
}

type runResponse struct {
	Message       string                `json:"message,omitempty"`
	Error         string                `json:"error,omitempty"`
	Inferred      int                   `json:"inferred"`
	Approved      int                   `json:"approved"`
	Stats         recordstore.Stats     `json:"stats"`
	Records       *recordstore.Store    `json:"records,omitempty"`
	Notifications []plugin.Notification `json:"notifications"`
}

func (api *API) ServeRun(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer r.Body.Close()
	p, err := api.plugins.Lookup(ps.ByName("name"))
	if err != nil {
		jsonResponse(w, http.StatusNotFound, err)
		return
	}
	if api.ro && p.Kind() != plugin.Export {
		jsonResponse(w, http.StatusForbidden, errors.New("store is read-only"))
		return
	}
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonResponse(w, http.StatusBadRequest, err)
			return
		}
	}
	params := make(plugin.Values)
	for k, v := range api.params {
		if _, ok := p.Parameters().Lookup(k); ok {
			params[k] = v
		}
	}
	for k, v := range req.Parameters {
		params[k] = v
	}

	ctx := r.Context()
	if api.timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, api.timeout)
		defer cancel()
	}
	rec := &plugin.Recorder{Next: plugin.LogInteraction{Name: p.Name()}}
	api.mu.Lock()
	out, err := plugin.Run(ctx, p, &plugin.Request{
		Graph:   api.graph,
		Store:   api.store,
		Params:  params,
		Records: req.Records,
	}, rec)
	api.mu.Unlock()

	resp := runResponse{Notifications: rec.Notifications()}
	code := http.StatusOK
	switch {
	case errors.Is(err, plugin.ErrCancelled):
		code = http.StatusServiceUnavailable
		resp.Error = err.Error()
	case errors.Is(err, plugin.ErrMissingParameter):
		code = http.StatusBadRequest
		resp.Error = err.Error()
	case err != nil:
		code = http.StatusInternalServerError
		resp.Error = err.Error()
	default:
		resp.Message = out.Message
		resp.Inferred = out.Inferred
		resp.Approved = out.Approved
		resp.Stats = out.Stats
		resp.Records = out.Records
		api.notify()
	}
	writeJSON(w, code, resp)
}

func (api *API) notify() {
	if api.changed != nil {
		api.changed()
	}
}

// ServeModel writes the asserted statements, and the inferred ones when the
// inferred form value is true.
func (api *API) ServeModel(w http.ResponseWriter, r *http.Request) {
	format := getFormat(r, "format", hdrAccept)
	if format == nil || format.Writer == nil {
		jsonResponse(w, http.StatusBadRequest, fmt.Errorf("format is not supported for writing data"))
		return
	}
	withInferred := false
	if s := r.FormValue("inferred"); s != "" {
		var err error
		if withInferred, err = strconv.ParseBool(s); err != nil {
			jsonResponse(w, http.StatusBadRequest, err)
			return
		}
	}
	stmts := api.store.Connection().Statements(withInferred, nil, nil, nil)

	wr := writerFrom(w, r, hdrAcceptEncoding)
	defer wr.Close()
	if len(format.Mime) != 0 {
		w.Header().Set(hdrContentType, format.Mime[0])
	}
	if _, err := internal.Write(wr, stmts, format.Name); err != nil {
		// the header is already written
		clog.Errorf("write statements error: %v", err)
	}
}

// writeResponse represents the response received for a successful write
type writeResponse struct {
	Result string `json:"result"`
	Count  int    `json:"count"`
}

// newWriteResponse creates a new writeResponse for given count of statements written
func newWriteResponse(count int) writeResponse {
	return writeResponse{
		Result: fmt.Sprintf("Successfully wrote %d statements.", count),
		Count:  count,
	}
}

// ServeWrite asserts the statements of the request body and adds them to the
// graph on the utility layer.
func (api *API) ServeWrite(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	if api.ro {
		jsonResponse(w, http.StatusForbidden, errors.New("store is read-only"))
		return
	}
	format := getFormat(r, "format", hdrContentType)
	if format == nil || format.Reader == nil {
		jsonResponse(w, http.StatusBadRequest, errors.New("format is not supported for reading data"))
		return
	}
	rd, err := readerFrom(r, hdrContentEncoding)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	defer rd.Close()
	qr := format.Reader(rd)
	defer qr.Close()

	var stmts []triple.Statement
	sw := &internal.StatementWriter{Fn: func(st triple.Statement) error {
		stmts = append(stmts, st)
		return nil
	}}
	if _, err := quad.CopyBatch(sw, qr, api.batch); err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}

	imp := &plugin.Func{
		ID:   importPlugin,
		Type: plugin.Import,
		Run: func(ctx context.Context, req *plugin.Request, in plugin.Interaction) (*plugin.Output, error) {
			return &plugin.Output{
				Asserted: stmts,
				Batch:    materialize.New(materialize.UtilLayer).Statements(stmts),
			}, nil
		},
	}
	api.mu.Lock()
	out, err := plugin.Run(r.Context(), imp, &plugin.Request{Graph: api.graph, Store: api.store}, nil)
	api.mu.Unlock()
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, err)
		return
	}
	api.notify()
	writeJSON(w, http.StatusOK, newWriteResponse(out.Approved))
}
