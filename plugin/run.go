package plugin

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/rdfsail/clog"
	"github.com/cayleygraph/rdfsail/recordstore"
	"github.com/cayleygraph/rdfsail/sail"
)

var (
	executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdfsail_plugin_executions_total",
		Help: "Number of plugin executions, by plugin and result.",
	}, []string{"plugin", "result"})
	executionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "rdfsail_plugin_execution_seconds",
		Help: "Duration of plugin executions, by plugin.",
	}, []string{"plugin"})
)

// Run executes p and applies its output.
//
// Every failure is reported to in exactly once, at error level, and returned
// as an *Error. Cancellation is reported once at info level and returned as
// ErrCancelled. Nothing is applied unless the plugin succeeds.
func Run(ctx context.Context, p Plugin, req *Request, in Interaction) (*Output, error) {
	if in == nil {
		in = LogInteraction{Name: p.Name()}
	}
	if req == nil {
		req = &Request{}
	}
	start := time.Now()
	defer func() {
		executionSeconds.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	}()

	out, err := run(ctx, p, req, in)
	switch {
	case err == nil:
		executions.WithLabelValues(p.Name(), "ok").Inc()
		if out.Message != "" {
			in.Notify(LevelInfo, out.Message)
		}
		return out, nil
	case errors.Is(err, context.Canceled):
		executions.WithLabelValues(p.Name(), "cancelled").Inc()
		in.Notify(LevelInfo, p.Name()+" was cancelled")
		return nil, ErrCancelled
	}
	executions.WithLabelValues(p.Name(), "failed").Inc()
	perr := &Error{Plugin: p.Name(), Err: err}
	in.Notify(LevelError, perr.Error())
	return nil, perr
}

func run(ctx context.Context, p Plugin, req *Request, in Interaction) (*Output, error) {
	params, err := p.Parameters().Resolve(req.Params)
	if err != nil {
		return nil, err
	}
	req.Params = params
	if req.Sync != nil {
		if err := req.Sync.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if clog.V(1) {
		clog.Infof("plugin: running %s (%v)", p.Name(), p.Kind())
	}
	out, err := p.Execute(ctx, req, in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = &Output{}
	}
	if err := apply(p.Name(), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func apply(name string, req *Request, out *Output) error {
	if req.Store != nil {
		if len(out.Asserted) != 0 {
			sink, err := req.Store.Explicit().Sink(sail.None)
			if err != nil {
				return err
			}
			before := req.Store.Explicit().Model().Len()
			for _, st := range out.Asserted {
				if err := sink.ApproveStatement(st); err != nil {
					sink.Close()
					return err
				}
			}
			sink.Close()
			out.Approved = req.Store.Explicit().Model().Len() - before
		}
		n, err := req.Store.Connection().AddInferred(out.Statements)
		if err != nil {
			return err
		}
		out.Inferred = n
		if len(out.Retractions) != 0 {
			sink, err := req.Store.Inferred().Sink(sail.None)
			if err != nil {
				return err
			}
			for _, st := range out.Retractions {
				if err := sink.Deprecate(st); err != nil {
					sink.Close()
					return err
				}
			}
			sink.Close()
		}
	}
	if !out.writesGraph() {
		return nil
	}
	if req.Graph == nil {
		return ErrNoGraph
	}
	tx := req.Graph.Write(name)
	var st recordstore.Stats
	if out.Batch != nil {
		st = out.Batch.Apply(tx)
	}
	if out.Records != nil {
		rs := recordstore.AddToGraph(tx, out.Records)
		st.Vertices += rs.Vertices
		st.NewVertices += rs.NewVertices
		st.Transactions += rs.Transactions
		st.NewTransactions += rs.NewTransactions
	}
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}
	out.Stats = st
	if clog.V(1) {
		clog.Infof("plugin: %s: %d vertices (%d new), %d transactions (%d new), %d inferred",
			name, st.Vertices, st.NewVertices, st.Transactions, st.NewTransactions, out.Inferred)
	}
	return nil
}
