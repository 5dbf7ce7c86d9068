package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/config"
	"github.com/storacha/redirector/pkg/resolver"
)

var ResolveCmd = &cli.Command{
	Name:      "resolve",
	Usage:     "Resolve paths against a mapping document and print the responses.",
	ArgsUsage: "<path>...",
	Flags:     SourceFlags,
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() == 0 {
			return fmt.Errorf("at least one path is required")
		}

		cfg, err := config.LoadConfig(cCtx)
		if err != nil {
			return err
		}

		source, closeSource, err := openSource(cCtx.Context, cfg)
		if err != nil {
			return err
		}
		defer closeSource()

		r := resolver.New(newAccessor(cfg, source))
		for i, uri := range cCtx.Args().Slice() {
			if i > 0 {
				fmt.Fprintln(cCtx.App.Writer)
			}
			printResponse(cCtx.App.Writer, uri, r.Resolve(cCtx.Context, resolver.Request{URI: uri}))
		}
		return nil
	},
}

func printResponse(w io.Writer, uri string, res resolver.Response) {
	fmt.Fprintf(w, "%s\n%d %s\n", uri, res.Status, res.StatusDescription)
	names := make([]string, 0, len(res.Headers))
	for k := range res.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "%s: %s\n", k, res.Headers[k])
	}
	if res.Body != "" {
		fmt.Fprintf(w, "\n%s\n", res.Body)
	}
}
