package main

import (
	"net/http"

	"github.com/storacha/redirector/cmd/lambda"
	"github.com/storacha/redirector/pkg/aws"
	"github.com/storacha/redirector/pkg/server"
)

func makeHandler(cfg aws.Config) (http.Handler, error) {
	r := lambda.NewResolver(cfg)
	return server.NewServer(server.WithResolver(r)), nil
}

func main() {
	lambda.StartHTTPHandler(makeHandler)
}
