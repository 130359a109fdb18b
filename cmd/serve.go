package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/alerting"
	"github.com/scholarmatch/scholarmatch/internal/cycle"
	"github.com/scholarmatch/scholarmatch/internal/delivery"
	"github.com/scholarmatch/scholarmatch/internal/ledger"
	"github.com/scholarmatch/scholarmatch/internal/logger"
	"github.com/scholarmatch/scholarmatch/internal/prefs"
	"github.com/scholarmatch/scholarmatch/internal/schedule"
	"github.com/scholarmatch/scholarmatch/internal/secrets"
	"github.com/scholarmatch/scholarmatch/internal/transport"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scholarmatch service: HTTP transport plus the periodic evaluation cycles",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config, runtime := bootstrap(ctx)

	listen := defaultListen
	var origins []string
	if config.Transport != nil {
		if config.Transport.Listen != "" {
			listen = config.Transport.Listen
		}
		origins = config.Transport.AllowedOrigins
	}

	var deadlineSpec, sweepSpec string
	if config.Alerts != nil {
		deadlineSpec = config.Alerts.DeadlineSpec
		sweepSpec = config.Alerts.SweepSpec
	}

	scheduler := schedule.New(runtime.runner, logger, deadlineSpec, sweepSpec)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	server := transport.New(listen, runtime.store, runtime.runner, logger, origins)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("transport failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("transport shutdown", zap.Error(err))
		}
	}
}

// runtime bundles the long-lived pieces shared by the serve and cycle
// commands.
type runtime struct {
	store  *prefs.Store
	runner *cycle.Runner
}

func bootstrap(ctx context.Context) (*zap.Logger, *Config, *runtime) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting scholarmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	token, err := resolveLedgerToken(config)
	if err != nil {
		logger.Fatal(
			"loading ledger token",
			zap.Error(err),
			zap.String("hint", "set LEDGER_TOKEN_FILE environment variable or the 'ledger.token-file' key in the configuration file"),
		)
	}

	bridge := ledger.New(ctx, logger, token)
	if config.Ledger != nil && config.Ledger.URL != "" {
		bridge.APIURL = config.Ledger.URL
	}

	channels, err := buildChannels(config, logger)
	if err != nil {
		logger.Fatal("building delivery channels", zap.Error(err))
	}

	store := prefs.NewStore()
	dispatcher := alerting.NewDispatcher(channels, channelTimeoutFrom(config), logger)
	runner := cycle.NewRunner(bridge, store, dispatcher, logger)

	return logger, config, &runtime{store: store, runner: runner}
}

func resolveLedgerToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := ""
	if config.Ledger != nil {
		tokenFile = strings.TrimSpace(config.Ledger.TokenFile)
	}
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("ledger.token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("ledger token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "ledger token",
		File: tokenFile,
	})
}

// buildChannels prefers the notifier gateway when one is configured and
// falls back to log-backed channels otherwise, mirroring a development
// setup without real delivery.
func buildChannels(config *Config, logger *zap.Logger) ([]delivery.Channel, error) {
	if config.Gateway == nil || config.Gateway.URL == "" {
		logger.Warn("no notifier gateway configured, messages will only be logged")
		return []delivery.Channel{
			delivery.NewLogChannel(delivery.ChannelEmail, logger),
			delivery.NewLogChannel(delivery.ChannelPush, logger),
		}, nil
	}

	token, err := secrets.Load(secrets.Source{
		Name: "gateway token",
		File: config.Gateway.TokenFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gateway.token-file or GATEWAY_TOKEN_FILE)", err)
	}

	gateway := delivery.NewGateway(config.Gateway.URL, token, logger)
	return []delivery.Channel{
		gateway.Channel(delivery.ChannelEmail),
		gateway.Channel(delivery.ChannelPush),
	}, nil
}

func channelTimeoutFrom(config *Config) (timeout time.Duration) {
	if config.Alerts != nil {
		timeout = config.Alerts.ChannelTimeout
	}
	return
}
