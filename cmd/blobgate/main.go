package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	blobgate "github.com/blobgate/blobgate"
	"github.com/blobgate/blobgate/cache"
	"github.com/blobgate/blobgate/identity"
	byterange "github.com/blobgate/blobgate/pkg/byte-range"
	"github.com/blobgate/blobgate/storage"
)

const signingKeyEnv = "BLOBGATE_SIGNING_KEY"

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	namespaceFlag      string
	originsFlag        string
	providerFlag       string
	dbFilenameFlag     string
	redisAddrFlag      string
	bucketFlag         string
	regionFlag         string
	endpointFlag       string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&namespaceFlag, "namespace", "", "Resource key namespace prefix (overrides config)")
	flag.StringVar(&originsFlag, "origins", "", "Comma-separated CORS origin allow list (overrides config)")
	flag.StringVar(&providerFlag, "provider", "", "Cache provider: sqlite, redis or memory (overrides config)")
	flag.StringVar(&dbFilenameFlag, "db", "cache.db", "Cache DB file name for the sqlite provider")
	flag.StringVar(&redisAddrFlag, "redis", "", "Redis address for the redis provider")
	flag.StringVar(&bucketFlag, "bucket", "", "S3 bucket to serve (empty: in-memory store)")
	flag.StringVar(&regionFlag, "region", "", "S3 region")
	flag.StringVar(&endpointFlag, "endpoint", "", "S3 endpoint override for compatible stores")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config := blobgate.FileConfig{}
	if configFilenameFlag != "" {
		var err error
		config, err = blobgate.LoadConfig(configFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not load config")
		}
	}
	applyFlagOverrides(&config)

	signingKey := os.Getenv(signingKeyEnv)
	if signingKey == "" {
		log.Fatal().Msgf("Please set %s", signingKeyEnv)
	}

	// cache provider
	var provider cache.Provider
	switch config.CacheProvider {
	case "", "sqlite":
		sqlite, err := cache.NewSQLiteCache(config.CacheDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open cache db")
		}
		provider = sqlite
	case "redis":
		if config.RedisAddr == "" {
			log.Fatal().Msg("Please specify a redis address for the redis provider")
		}
		provider = cache.NewRedisCache(config.RedisAddr)
	case "memory":
		provider = cache.NewMemCache()
	default:
		log.Fatal().Msgf("Unsupported cache provider: %s", config.CacheProvider)
	}

	// storage backend
	var store storage.Store
	if config.S3.Bucket != "" {
		s3store, err := storage.NewS3Store(context.Background(), config.S3.S3Config())
		if err != nil {
			log.Fatal().Err(err).Msg("Could not set up S3 store")
		}
		store = s3store
	} else {
		log.Warn().Msg("No bucket configured, serving from an empty in-memory store")
		store = storage.NewMemStore()
	}

	gateway := blobgate.New(blobgate.Config{
		Cache:         provider,
		Store:         store,
		Authenticator: identity.NewJWTAuthenticator(identity.SigningKey(signingKey)),
		Namespace:     config.Namespace,
		Limits: byterange.Limits{
			MaxRangeBytes:  config.MaxRangeBytes,
			MaxSuffixBytes: config.MaxSuffixBytes,
		},
		AllowedOrigins: config.AllowedOrigins,
		Freshness: blobgate.FreshnessPolicy{
			MaxAgeSeconds: config.MaxAgeSeconds,
			Immutable:     config.Immutable,
		},
		Logger: &log.Logger,
	})

	log.Info().Msgf("Serving namespace %q on port %v (cache: %s)", config.Namespace, config.Port, config.CacheProvider)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Port), gateway); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func applyFlagOverrides(config *blobgate.FileConfig) {
	if portFlag != 0 {
		config.Port = portFlag
	}
	if namespaceFlag != "" {
		config.Namespace = namespaceFlag
	}
	if originsFlag != "" {
		config.AllowedOrigins = originsFlag
	}
	if providerFlag != "" {
		config.CacheProvider = providerFlag
	}
	if dbFilenameFlag != "" && config.CacheDB == "" {
		config.CacheDB = dbFilenameFlag
	}
	if redisAddrFlag != "" {
		config.RedisAddr = redisAddrFlag
	}
	if bucketFlag != "" {
		config.S3.Bucket = bucketFlag
	}
	if regionFlag != "" {
		config.S3.Region = regionFlag
	}
	if endpointFlag != "" {
		config.S3.Endpoint = endpointFlag
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Namespace == "" {
		config.Namespace = blobgate.DefaultNamespace
	}
	if config.MaxRangeBytes == 0 {
		config.MaxRangeBytes = blobgate.DefaultMaxRangeBytes
	}
	if config.MaxSuffixBytes == 0 {
		config.MaxSuffixBytes = blobgate.DefaultMaxSuffixBytes
	}
	if config.MaxAgeSeconds == 0 {
		config.MaxAgeSeconds = blobgate.DefaultMaxAgeSeconds
	}
	if config.CacheProvider == "" {
		config.CacheProvider = "sqlite"
	}
}
