// licita/cmd/licitad/main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/broker"
	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rulepack"
	"rgehrsitz/licita/pkg/rules"
	"rgehrsitz/licita/pkg/server"
)

// Config represents the daemon configuration
type Config struct {
	LogLevel         string
	LogDestination   string
	HTTPAddress      string
	MaxUploadBytes   int64
	StatsInterval    int
	RulesFile        string
	RedisEnabled     bool
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	DocumentsChannel string
	ReportsChannel   string
}

// BrokerFactory opens the Redis transport when it is enabled.
type BrokerFactory interface {
	NewBroker(ctx context.Context, config *Config) (*broker.RedisBroker, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, &RealBrokerFactory{}); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

func run(ctx context.Context, args []string, brokerFactory BrokerFactory) error {
	config, err := parseConfig(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := logging.ConfigureLogger(config.LogLevel, config.LogDestination); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	rs, err := loadRules(config.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	logging.Logger.Info().Int("rules", len(rs)).Str("source", rulesSource(config.RulesFile)).Msg("Rules loaded")

	return runServices(ctx, config, rs, brokerFactory)
}

func parseConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.max_upload_bytes", server.DefaultMaxUploadBytes)
	v.SetDefault("http.stats_interval", 5)
	v.SetDefault("rules.file", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.documents_channel", broker.DefaultDocumentsChannel)
	v.SetDefault("redis.reports_channel", broker.DefaultReportsChannel)

	v.SetEnvPrefix("LICITA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile == "" {
		v.SetConfigName("licita_config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.licita")
		v.AddConfigPath("/etc/licita")
	} else {
		v.SetConfigFile(*configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || *configFile != "" {
			return nil, logging.NewError(logging.ErrorTypeConfig, "error reading config file", err,
				map[string]interface{}{"file": *configFile})
		}
		log.Info().Msg("No configuration file found, using defaults")
	}

	config := &Config{
		LogLevel:         v.GetString("logging.level"),
		LogDestination:   v.GetString("logging.output"),
		HTTPAddress:      v.GetString("http.address"),
		MaxUploadBytes:   v.GetInt64("http.max_upload_bytes"),
		StatsInterval:    v.GetInt("http.stats_interval"),
		RulesFile:        v.GetString("rules.file"),
		RedisEnabled:     v.GetBool("redis.enabled"),
		RedisAddress:     v.GetString("redis.address"),
		RedisPassword:    v.GetString("redis.password"),
		RedisDB:          v.GetInt("redis.database"),
		DocumentsChannel: v.GetString("redis.documents_channel"),
		ReportsChannel:   v.GetString("redis.reports_channel"),
	}
	if config.StatsInterval <= 0 {
		return nil, logging.NewError(logging.ErrorTypeConfig, "http.stats_interval must be positive", nil,
			map[string]interface{}{"value": config.StatsInterval})
	}
	return config, nil
}

func loadRules(path string) ([]rules.Rule, error) {
	if path == "" {
		return rules.Catalog(), nil
	}
	return rulepack.Load(path)
}

func rulesSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

// runServices runs the HTTP server and, when enabled, the Redis request
// loop until ctx is cancelled or one of them fails.
func runServices(ctx context.Context, config *Config, rs []rules.Rule, brokerFactory BrokerFactory) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.New(server.Config{
		Rules:          rs,
		MaxUploadBytes: config.MaxUploadBytes,
		StatsInterval:  time.Duration(config.StatsInterval) * time.Second,
	})

	errCh := make(chan error, 2)
	services := 1
	go func() { errCh <- srv.Run(ctx, config.HTTPAddress) }()

	if config.RedisEnabled {
		b, err := brokerFactory.NewBroker(ctx, config)
		if err != nil {
			cancel()
			<-errCh
			return err
		}
		defer b.Close()

		pubsub, err := b.SubscribeRequests(ctx)
		if err != nil {
			cancel()
			<-errCh
			return err
		}
		defer pubsub.Close()

		services++
		handler := recordingHandler(broker.AnalyzeHandler(rs), srv.Stats())
		go func() { errCh <- b.Serve(ctx, pubsub, handler) }()
	}

	logging.Logger.Info().Str("http", config.HTTPAddress).Bool("redis", config.RedisEnabled).Msg("licitad started")

	var firstErr error
	for i := 0; i < services; i++ {
		err := <-errCh
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
		}
	}

	logging.Logger.Info().Msg("licitad stopped")
	return firstErr
}

// recordingHandler counts analyses served over Redis in the HTTP stats feed.
func recordingHandler(next broker.Handler, stats *server.Stats) broker.Handler {
	return func(ctx context.Context, req broker.Request) (analyzer.Report, error) {
		report, err := next(ctx, req)
		if err == nil {
			stats.RecordAnalysis(report)
		}
		return report, err
	}
}

// RealBrokerFactory implements BrokerFactory
type RealBrokerFactory struct{}

func (f *RealBrokerFactory) NewBroker(ctx context.Context, config *Config) (*broker.RedisBroker, error) {
	return broker.NewRedisBroker(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB, broker.Channels{
		Documents: config.DocumentsChannel,
		Reports:   config.ReportsChannel,
	})
}
