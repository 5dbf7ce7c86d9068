package build

// Values set at link time, e.g.
//
//	go build -ldflags "-X github.com/storacha/redirector/pkg/build.ConfigBucket=my-bucket"
//
// Edge functions cannot be configured through environment variables, so the
// mapping location is baked into the binary when deploying there.
var (
	Version      = "v0.0.0-dev"
	ConfigBucket = ""
	ConfigKey    = "redirects.json"
)
