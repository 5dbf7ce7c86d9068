package main

import (
	"github.com/storacha/redirector/cmd/lambda"
	"github.com/storacha/redirector/internal/telemetry"
	"github.com/storacha/redirector/pkg/aws"
	"github.com/storacha/redirector/pkg/edge"
)

func makeHandler(cfg aws.Config) (edge.Handler, error) {
	return edge.NewHandler(lambda.NewResolver(cfg), telemetry.ReportError), nil
}

func main() {
	lambda.StartEdgeHandler(makeHandler)
}
