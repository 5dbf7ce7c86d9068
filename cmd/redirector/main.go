package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/cmd"
)

var log = logging.Logger("redirector")

func main() {
	logging.SetLogLevel("*", "warn")

	app := &cli.App{
		Name:  "redirector",
		Usage: "Resolve short slugs to redirects.",
		Commands: []*cli.Command{
			cmd.ServeCmd,
			cmd.ResolveCmd,
			cmd.ValidateCmd,
			cmd.ImportCmd,
			cmd.VersionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
