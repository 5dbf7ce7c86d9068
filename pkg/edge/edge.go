// Package edge adapts the resolver to CloudFront viewer-request events, where
// the function returns the response itself instead of forwarding the request
// to an origin.
package edge

import (
	"context"
	"errors"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/pkg/resolver"
)

var log = logging.Logger("edge")

// ErrNoRecords is reported when an event carries no CloudFront record.
var ErrNoRecords = errors.New("event has no records")

// Event is a CloudFront Lambda@Edge event.
type Event struct {
	Records []Record `json:"Records"`
}

type Record struct {
	CF CloudFront `json:"cf"`
}

type CloudFront struct {
	Config  Config  `json:"config"`
	Request Request `json:"request"`
}

type Config struct {
	DistributionDomainName string `json:"distributionDomainName"`
	DistributionID         string `json:"distributionId"`
	EventType              string `json:"eventType"`
	RequestID              string `json:"requestId"`
}

type Request struct {
	ClientIP    string  `json:"clientIp"`
	Method      string  `json:"method"`
	URI         string  `json:"uri"`
	QueryString string  `json:"querystring"`
	Headers     Headers `json:"headers"`
}

// Headers are keyed by lower case header name.
type Headers map[string][]Header

type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the generated response returned to CloudFront.
type Response struct {
	Status            string  `json:"status"`
	StatusDescription string  `json:"statusDescription"`
	Headers           Headers `json:"headers,omitempty"`
	Body              string  `json:"body,omitempty"`
}

// FromResolverResponse converts a resolver response into its CloudFront form.
func FromResolverResponse(res resolver.Response) Response {
	out := Response{
		Status:            strconv.Itoa(res.Status),
		StatusDescription: res.StatusDescription,
		Body:              res.Body,
	}
	if len(res.Headers) > 0 {
		out.Headers = make(Headers, len(res.Headers))
		for k, v := range res.Headers {
			out.Headers[strings.ToLower(k)] = []Header{{Key: k, Value: v}}
		}
	}
	return out
}

// Handler is a Lambda handler for viewer-request events.
type Handler func(ctx context.Context, event Event) (Response, error)

// NewHandler creates a [Handler] resolving the URI of the first record in
// each event. It never returns an error; failures are passed to report and
// answered with the error page.
func NewHandler(r *resolver.Resolver, report resolver.ErrorReporter) Handler {
	return func(ctx context.Context, event Event) (Response, error) {
		if len(event.Records) == 0 {
			log.Error(ErrNoRecords)
			if report != nil {
				report(ErrNoRecords)
			}
			return FromResolverResponse(resolver.ErrorResponse()), nil
		}
		req := event.Records[0].CF.Request
		res := r.Resolve(ctx, resolver.Request{URI: req.URI})
		return FromResolverResponse(res), nil
	}
}
