package command

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/rdfsail/clog"
)

const (
	defaultURI          = "http://127.0.0.1:64210"
	defaultClientFormat = "nquads"
	modelPath           = "/api/v1/model"
)

func formatByFileName(fileName string) *quad.Format {
	return quad.FormatByExt(filepath.Ext(fileName))
}

func NewPushCmd() *cobra.Command {
	var uri, formatName string
	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Send statements to a running server. If no file is provided, push reads from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var format *quad.Format
			if formatName != "" {
				if format = quad.FormatByName(formatName); format == nil {
					return fmt.Errorf("unknown format %q", formatName)
				}
			}
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				fileName := args[0]
				if format == nil {
					format = formatByFileName(fileName)
				}
				file, err := os.Open(fileName)
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}
			if format == nil {
				format = quad.FormatByName(defaultClientFormat)
			}
			resp, err := http.Post(uri+modelPath+"?format="+format.Name, format.Mime[0], r)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var response struct {
				Result string `json:"result"`
				Count  int    `json:"count"`
				Error  string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
				return err
			}
			if response.Error != "" {
				return fmt.Errorf("%s: %s", resp.Status, response.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), response.Result)
			return nil
		},
	}
	cmd.Flags().StringVar(&uri, "uri", defaultURI, "server URI")
	cmd.Flags().StringVar(&formatName, "format", "", "format of the provided data (if it cannot be detected defaults to N-Quads)")
	return cmd
}

func NewPullCmd() *cobra.Command {
	var quiet, withInferred bool
	var uri, formatName, out string
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch statements from a running server. If no file is provided, pull writes to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				clog.SetLogger(nil)
			}
			var format *quad.Format
			if formatName != "" {
				format = quad.FormatByName(formatName)
			}
			var w io.Writer
			if out == "" {
				w = cmd.OutOrStdout()
			} else {
				if formatName == "" {
					format = formatByFileName(out)
					if format == nil {
						clog.Warningf("File has unknown extension %v. Defaulting to %v", out, defaultClientFormat)
					}
				}
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if format == nil {
				format = quad.FormatByName(defaultClientFormat)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, uri+modelPath, nil)
			if err != nil {
				return err
			}
			q := req.URL.Query()
			q.Set("format", format.Name)
			if withInferred {
				q.Set("inferred", "true")
			}
			req.URL.RawQuery = q.Encode()
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("cannot pull statements: %s", resp.Status)
			}
			_, err = io.Copy(w, resp.Body)
			return err
		},
	}
	cmd.Flags().StringVar(&uri, "uri", defaultURI, "server URI")
	cmd.Flags().StringVar(&formatName, "format", "", "format of the output (if it cannot be detected defaults to N-Quads)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; if not specified, stdout is used")
	cmd.Flags().BoolVar(&withInferred, "inferred", false, "include inferred statements")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide all log output")
	return cmd
}
