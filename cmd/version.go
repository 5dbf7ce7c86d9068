package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/build"
)

var VersionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print the version and the mapping location built into the binary.",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "short",
			Usage: "Only print the version.",
		},
	},
	Action: func(cCtx *cli.Context) error {
		w := cCtx.App.Writer
		if cCtx.Bool("short") {
			fmt.Fprintln(w, build.Version)
			return nil
		}
		bucket := build.ConfigBucket
		if bucket == "" {
			bucket = "(unset)"
		}
		fmt.Fprintf(w, "redirector %s\n", build.Version)
		fmt.Fprintf(w, "mapping: s3://%s/%s\n", bucket, build.ConfigKey)
		return nil
	},
}
