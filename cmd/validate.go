package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/redirect"
)

var ValidateCmd = &cli.Command{
	Name:      "validate",
	Usage:     "Check a mapping document for errors.",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Treat unrecognised redirect types as errors instead of warnings.",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return fmt.Errorf("expected exactly one mapping document")
		}
		data, err := os.ReadFile(cCtx.Args().First())
		if err != nil {
			return fmt.Errorf("reading mapping document: %w", err)
		}
		m, err := redirect.Decode(data)
		if err != nil {
			return err
		}

		unknown := UnknownTypes(m)
		for _, slug := range unknown {
			fmt.Fprintf(cCtx.App.Writer, "warning: slug %q has unrecognised type %q, it will redirect with 302 Found\n", slug, m[slug].Type)
		}
		if cCtx.Bool("strict") && len(unknown) > 0 {
			return fmt.Errorf("%d slugs have unrecognised redirect types", len(unknown))
		}
		fmt.Fprintf(cCtx.App.Writer, "ok: %d slugs\n", len(m))
		return nil
	},
}

// UnknownTypes returns the sorted slugs whose type is not in the
// classification table. Empty types are the documented default and are not
// reported.
func UnknownTypes(m redirect.Mapping) []string {
	var slugs []string
	for slug, e := range m {
		if e.Type != "" && !redirect.Classify(e.Type).Known {
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs
}
