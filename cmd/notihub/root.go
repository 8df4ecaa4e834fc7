package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-notihub/notihub"
	"github.com/tinywideclouds/go-notihub/notihub/config"
	"github.com/tinywideclouds/go-notihub/pkg/dispatch"
	"github.com/tinywideclouds/go-notihub/pkg/platform/amazon"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	logger *slog.Logger
	out    io.Writer
	client notihub.NotifierClient
	cfg    *config.Config

	configPath string
	envFiles   []string
	provider   string
}

func newRootCommand(logger *slog.Logger, out io.Writer) *cobra.Command {
	a := &app{logger: logger, out: out}

	root := &cobra.Command{
		Use:          "notihub",
		Short:        "Send SMS, email and push notifications through one interface",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (defaults to the built-in local.yaml)")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "env files loaded before overrides are applied (default .env)")
	flags.StringVar(&a.provider, "provider", "", "provider to send through, one of: "+providerNames())

	root.AddCommand(
		a.smsCommand(),
		a.emailCommand(),
		a.pushCommand(),
		a.pinpointCommand(),
		a.topicCommand(),
		a.templateCommand(),
		providersCommand(out),
	)
	return root
}

func (a *app) loadConfig() error {
	if err := config.LoadDotEnv(a.logger, a.envFiles...); err != nil {
		return err
	}

	data := configFile
	if a.configPath != "" {
		b, err := os.ReadFile(a.configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		data = b
	}

	yamlCfg, err := config.ParseYaml(data)
	if err != nil {
		return err
	}
	baseCfg, err := config.NewConfigFromYaml(yamlCfg, a.logger)
	if err != nil {
		return err
	}
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, a.logger)
	if err != nil {
		return err
	}
	if a.provider != "" {
		cfg.Provider = strings.ToLower(a.provider)
	}
	a.cfg = cfg
	return nil
}

func (a *app) notifier(ctx context.Context) (dispatch.Notifier, error) {
	a.logger.Debug("Building notifier", "provider", a.cfg.Provider)
	return a.client.Get(ctx, notihub.Provider(a.cfg.Provider), a.cfg, a.logger)
}

// awsNotifier ignores --provider; Pinpoint, topic and template commands only
// exist on AWS.
func (a *app) awsNotifier(ctx context.Context) (*amazon.Notifier, error) {
	return a.client.GetAWSNotifier(ctx, notihub.AWSCredentials(a.cfg.AWS), a.logger)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func providerNames() string {
	names := make([]string, 0, len(notihub.Providers()))
	for _, p := range notihub.Providers() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func providersCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the supported providers",
		Args:  cobra.NoArgs,
		// Listing needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range notihub.Providers() {
				if _, err := fmt.Fprintln(out, p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
