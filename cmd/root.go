package cmd

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nirvanjha2004/outreach-composer/config"
)

var rootCmd = &cobra.Command{
	Use:   "outreach-composer",
	Short: "Campaign composer service for Instagram outreach",
	Long:  "Session-backed wizard service for composing, reviewing and launching Instagram outreach campaigns",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
		initLogger()
	},
	Run: func(cmd *cobra.Command, args []string) {
		restServer(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("port", config.AppPort, "HTTP port to listen on")
	pf.String("host", config.AppHost, "HTTP host to bind")
	pf.Bool("debug", config.AppDebug, "enable debug logging")
	pf.String("backend-base-url", config.BackendBaseURL, "base URL of the outreach backend")
	pf.Duration("backend-timeout", config.BackendTimeout, "timeout for backend calls")
	pf.Duration("session-ttl", config.SessionTTL, "idle duration before a session is evicted")
	pf.Duration("session-sweep-interval", config.SessionSweepInterval, "interval between session eviction sweeps")

	viper.BindPFlag("port", pf.Lookup("port"))
	viper.BindPFlag("host", pf.Lookup("host"))
	viper.BindPFlag("debug", pf.Lookup("debug"))
	viper.BindPFlag("backend_base_url", pf.Lookup("backend-base-url"))
	viper.BindPFlag("backend_timeout", pf.Lookup("backend-timeout"))
	viper.BindPFlag("session_ttl", pf.Lookup("session-ttl"))
	viper.BindPFlag("session_sweep_interval", pf.Lookup("session-sweep-interval"))
}

func initConfig() {
	viper.SetEnvPrefix("composer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config.AppPort = viper.GetString("port")
	config.AppHost = viper.GetString("host")
	config.AppDebug = viper.GetBool("debug")
	config.BackendBaseURL = viper.GetString("backend_base_url")
	config.BackendTimeout = viper.GetDuration("backend_timeout")
	config.SessionTTL = viper.GetDuration("session_ttl")
	config.SessionSweepInterval = viper.GetDuration("session_sweep_interval")
}

func initLogger() {
	if config.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorln(err)
		os.Exit(1)
	}
}
