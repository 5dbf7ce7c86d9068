package cmd

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/storacha/redirector/internal/telemetry"
	"github.com/storacha/redirector/pkg/config"
	"github.com/storacha/redirector/pkg/resolver"
	"github.com/storacha/redirector/pkg/server"
)

var ServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve redirects over HTTP.",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultServicePort,
			Usage:   "Port to bind the server to.",
			Action: func(c *cli.Context, v int) error {
				if v <= 0 || v > 65535 {
					return fmt.Errorf("invalid port: must be between 1 and 65535")
				}
				return nil
			},
		},
	}, SourceFlags...),
	Action: func(cCtx *cli.Context) error {
		logging.SetLogLevel("*", "info")

		cfg, err := config.LoadConfig(cCtx)
		if err != nil {
			return err
		}
		telemetry.SetupErrorReporting(cfg.Sentry.DSN, cfg.Sentry.Environment)

		source, closeSource, err := openSource(cCtx.Context, cfg)
		if err != nil {
			return err
		}
		defer closeSource()

		r := resolver.New(newAccessor(cfg, source), resolver.WithErrorReporter(telemetry.ReportError))

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		PrintHero(addr, cfg)
		return server.ListenAndServe(
			addr,
			server.WithResolver(r),
			server.WithRequestTimeout(cfg.Server.RequestTimeout),
			server.WithHealthCheck(cfg.Server.HealthCheckPath),
			server.WithHandlerWrapper(telemetry.WrapHandler),
		)
	},
}
