package owl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/cayleygraph/rdfsail/clog"
)

// Request describes a single reasoning task. Input is an ontology document
// in Format; the oracle writes the document extended with inferred axioms of
// the requested categories to Output, in the same format.
type Request struct {
	Input      string
	Output     string
	Format     string
	Categories []Category
}

// Oracle computes inferred axioms for an ontology document.
type Oracle interface {
	Reason(ctx context.Context, req Request) error
}

// OracleFunc adapts a function to an Oracle.
type OracleFunc func(ctx context.Context, req Request) error

func (f OracleFunc) Reason(ctx context.Context, req Request) error { return f(ctx, req) }

// CommandOracle runs an external reasoner executable. Each argument may
// reference {input}, {output}, {format} and {categories}.
type CommandOracle struct {
	Path string
	Args []string
	// Stderr receives the command's error stream. When nil it is logged.
	Stderr io.Writer
}

func expandArgs(args []string, req Request) []string {
	r := strings.NewReplacer(
		"{input}", req.Input,
		"{output}", req.Output,
		"{format}", req.Format,
		"{categories}", JoinCategories(req.Categories),
	)
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, r.Replace(a))
	}
	return out
}

func (o *CommandOracle) Reason(ctx context.Context, req Request) error {
	if o.Path == "" {
		return fmt.Errorf("owl: reasoner command is not set")
	}
	args := expandArgs(o.Args, req)
	cmd := exec.CommandContext(ctx, o.Path, args...)
	var stderr bytes.Buffer
	if o.Stderr != nil {
		cmd.Stderr = o.Stderr
	} else {
		cmd.Stderr = &stderr
	}
	if clog.V(1) {
		clog.Infof("owl: running %s %v", o.Path, args)
	}
	if err := cmd.Run(); err != nil {
		if stderr.Len() != 0 {
			clog.Warningf("owl: %s: %s", o.Path, strings.TrimSpace(stderr.String()))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("owl: reasoner command failed: %w", err)
	}
	return nil
}

// HTTPOracle posts the input document to a reasoning service and stores the
// response body as the output document.
type HTTPOracle struct {
	URL    string
	Client *http.Client
}

// CategoriesParam is the query parameter carrying the requested categories.
const CategoriesParam = "categories"

func (o *HTTPOracle) Reason(ctx context.Context, req Request) error {
	in, err := os.Open(req.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	u := o.URL
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + CategoriesParam + "=" + JoinCategories(req.Categories)

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, in)
	if err != nil {
		return err
	}
	if f := formatByName(req.Format); f != nil && len(f.Mime) != 0 {
		hreq.Header.Set("Content-Type", f.Mime[0])
		hreq.Header.Set("Accept", f.Mime[0])
	}
	cli := o.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(hreq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("owl: reasoning service returned %s", resp.Status)
	}
	out, err := os.Create(req.Output)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
