package sailhttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/cayleygraph/rdfsail/clog"
)

// ShutdownTimeout bounds the wait for running requests on shutdown.
const ShutdownTimeout = 10 * time.Second

// Serve listens on addr and serves h until ctx is done. A positive
// connLimit caps the number of simultaneous connections.
func Serve(ctx context.Context, addr string, connLimit int, h http.Handler) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, l, connLimit, h)
}

// ServeListener is like Serve for an existing listener.
func ServeListener(ctx context.Context, l net.Listener, connLimit int, h http.Handler) error {
	if connLimit > 0 {
		l = netutil.LimitListener(l, connLimit)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 30 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()
	clog.Infof("listening on %s", l.Addr())
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
