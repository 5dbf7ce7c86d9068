package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/config"
)

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path to configuration file.",
	EnvVars: []string{"REDIRECTOR_CONFIG"},
}

// SourceFlags select and configure the store the mapping document is read
// from. Their environment variables are handled by the config package.
var SourceFlags = []cli.Flag{
	ConfigFlag,
	&cli.StringFlag{
		Name:  "source",
		Usage: "Where the mapping document is read from: s3, file or datastore.",
		Value: config.SourceS3,
	},
	&cli.DurationFlag{
		Name:  "fetch-timeout",
		Usage: "Time allowed to check and fetch the mapping document.",
	},
	&cli.PathFlag{
		Name:      "file",
		Aliases:   []string{"f"},
		Usage:     "Path to a mapping document (file source).",
		TakesFile: true,
	},
	&cli.StringFlag{
		Name:    "data-dir",
		Aliases: []string{"d"},
		Usage:   "Directory of the leveldb datastore (datastore source).",
	},
	&cli.StringFlag{
		Name:  "bucket",
		Usage: "Bucket holding the mapping document (s3 source).",
	},
	&cli.StringFlag{
		Name:  "key",
		Usage: "Object key of the mapping document (s3 source).",
	},
	&cli.StringFlag{
		Name:  "region",
		Usage: "Region of the bucket (s3 source).",
	},
	&cli.StringFlag{
		Name:  "endpoint",
		Usage: "Custom endpoint for S3 compatible stores (s3 source).",
	},
}
