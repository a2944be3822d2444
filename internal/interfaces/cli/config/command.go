package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/tourbook/tourbook/internal/infrastructure/config"
)

const maskedValue = "********"

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment override for server.mode")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newShowCommand(), newValidateCommand())
	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return Show(cmd.OutOrStdout(), cfg)
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the gateway settings are complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.Gateway.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gateway configuration ok (%s)\n", cfg.Gateway.Environment)
			return nil
		},
	}
}

func load() (*appconfig.Config, error) {
	if configPath != "" {
		return appconfig.LoadFile(configPath, env)
	}
	return appconfig.Load(env)
}

// Show writes cfg as YAML. Secrets are replaced so the output can be pasted
// into tickets.
func Show(w io.Writer, cfg *appconfig.Config) error {
	masked := *cfg
	masked.Gateway.SecretKey = mask(masked.Gateway.SecretKey)
	masked.Auth.JWT.Secret = mask(masked.Auth.JWT.Secret)
	masked.Database.Password = mask(masked.Database.Password)
	masked.Email.SMTPPassword = mask(masked.Email.SMTPPassword)
	masked.Redis.Password = mask(masked.Redis.Password)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func mask(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return maskedValue
}
