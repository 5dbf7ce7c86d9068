package cmd

import (
	"fmt"
	"os"
	"time"

	leveldb "github.com/ipfs/go-ds-leveldb"
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/pkg/mapping"
	"github.com/storacha/redirector/pkg/redirect"
)

var ImportCmd = &cli.Command{
	Name:      "import",
	Usage:     "Import a mapping document into a local datastore.",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "data-dir",
			Aliases:  []string{"d"},
			Usage:    "Directory of the leveldb datastore.",
			EnvVars:  []string{"REDIRECTOR_DATA_DIR"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "name",
			Usage:   "Name the document is stored under.",
			EnvVars: []string{"REDIRECTOR_DOCUMENT_NAME"},
			Value:   "/redirects",
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

		dir, err := mkdirp(cCtx.String("data-dir"))
		if err != nil {
			return err
		}
		ds, err := leveldb.NewDatastore(dir, nil)
		if err != nil {
			return fmt.Errorf("opening datastore: %w", err)
		}
		defer ds.Close()

		src := mapping.NewDsSource(ds, cCtx.String("name"))
		if err := src.Put(cCtx.Context, data, time.Now()); err != nil {
			return fmt.Errorf("storing mapping document: %w", err)
		}
		log.Infow("imported mapping document", "slugs", len(m), "dir", dir, "name", cCtx.String("name"))
		fmt.Fprintf(cCtx.App.Writer, "imported %d slugs\n", len(m))
		return nil
	},
}
