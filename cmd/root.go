package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "scholarmatch"
)

type Config struct {
	Ledger    *LedgerConfig    `mapstructure:"ledger"`
	Gateway   *GatewayConfig   `mapstructure:"gateway"`
	Transport *TransportConfig `mapstructure:"transport"`
	Alerts    *AlertsConfig    `mapstructure:"alerts"`
}

type LedgerConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type GatewayConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type TransportConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

type AlertsConfig struct {
	DeadlineSpec   string        `mapstructure:"deadline-spec"`
	SweepSpec      string        `mapstructure:"sweep-spec"`
	ChannelTimeout time.Duration `mapstructure:"channel-timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scholarmatch scores scholarship opportunities against candidate profiles and dispatches deadline and match alerts",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ledger.token-file", "LEDGER_TOKEN_FILE"); err != nil {
		log.Fatalf("binding LEDGER_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("gateway.token-file", "GATEWAY_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GATEWAY_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scholarmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the serve and cycle commands. Without them
	// we can skip initialization entirely.
	if serveCmd.CalledAs() == "" && cycleCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
