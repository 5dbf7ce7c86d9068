package cmd

import (
	"context"
	"fmt"
	"os"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	leveldb "github.com/ipfs/go-ds-leveldb"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/redirector/pkg/aws"
	"github.com/storacha/redirector/pkg/build"
	"github.com/storacha/redirector/pkg/config"
	"github.com/storacha/redirector/pkg/mapping"
)

var log = logging.Logger("cmd")

func PrintHero(addr string, cfg *config.Config) {
	fmt.Printf(`
 ___  ___  ___  _  ___  ___  ___  _____  ___   ___
| _ \| __||   \| || _ \| __|/ __||_   _|/ _ \ | _ \
|   /| _| | |) | ||   /| _|| (__   | | | (_) ||   /
|_|_\|___||___/|_||_|_\|___|\___|  |_|  \___/ |_|_\

🔀 Redirector %s
📄 %s
🚀 Listening on %s
`, build.Version, describeSource(cfg), addr)
}

func describeSource(cfg *config.Config) string {
	switch cfg.Source.Type {
	case config.SourceFile:
		return cfg.Source.Path
	case config.SourceDatastore:
		return fmt.Sprintf("%s%s", cfg.Source.DataDir, cfg.Source.Name)
	default:
		return fmt.Sprintf("s3://%s/%s", cfg.Source.Bucket, cfg.Source.Key)
	}
}

func mkdirp(dirpath ...string) (string, error) {
	dir := path.Join(dirpath...)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("creating directory: %s: %w", dir, err)
	}
	return dir, nil
}

// openSource creates the mapping source described by the configuration. The
// returned close function releases any resources held by the source.
func openSource(ctx context.Context, cfg *config.Config) (mapping.Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source.Type {
	case config.SourceFile:
		return mapping.NewFileSource(cfg.Source.Path), noop, nil

	case config.SourceDatastore:
		dir, err := mkdirp(cfg.Source.DataDir)
		if err != nil {
			return nil, nil, err
		}
		ds, err := leveldb.NewDatastore(dir, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening datastore: %w", err)
		}
		return mapping.NewDsSource(ds, cfg.Source.Name), ds.Close, nil

	case config.SourceS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading aws default config: %w", err)
		}
		var opt func(*s3.Options)
		if cfg.Source.AccessKeyID != "" {
			opt = aws.StaticCredentials(cfg.Source.Endpoint, cfg.Source.Region, cfg.Source.AccessKeyID, cfg.Source.SecretAccessKey)
		} else {
			opt = func(o *s3.Options) {
				o.Region = cfg.Source.Region
				if cfg.Source.Endpoint != "" {
					o.BaseEndpoint = &cfg.Source.Endpoint
					o.UsePathStyle = true
				}
			}
		}
		return aws.NewS3Source(awsCfg, cfg.Source.Bucket, cfg.Source.Key, opt), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown source type: %s", cfg.Source.Type)
}

func newAccessor(cfg *config.Config, source mapping.Source) *mapping.Accessor {
	var opts []mapping.Option
	if cfg.Source.FetchTimeout > 0 {
		opts = append(opts, mapping.WithTimeout(cfg.Source.FetchTimeout))
	}
	return mapping.NewAccessor(source, opts...)
}
