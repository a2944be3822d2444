package token

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tourbook/tourbook/internal/infrastructure/auth"
	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/shared/authorization"
)

var (
	env        string
	configPath string
	operatorID string
	role       string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Operator access tokens",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment override for server.mode")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newIssueCommand())
	return cmd
}

func newIssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a back-office operator",
		Long:  `Sign a token for the confirm, cancel and review endpoints with the configured JWT secret.`,
		RunE:  runIssue,
	}

	cmd.Flags().StringVar(&operatorID, "operator", "", "Operator identifier recorded in the token subject (required)")
	cmd.Flags().StringVar(&role, "role", authorization.RoleOperator.String(), "Role: operator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_exp_minutes)")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func runIssue(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, env)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	if err != nil {
		return err
	}
	return Issue(cmd.OutOrStdout(), svc, operatorID, authorization.OperatorRole(role), ttl)
}

// Issue signs a token and writes it with its expiry.
func Issue(w io.Writer, svc *auth.JWTService, operator string, r authorization.OperatorRole, lifetime time.Duration) error {
	signed, expiresAt, err := svc.Generate(operator, r, lifetime)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", signed)
	fmt.Fprintf(w, "# role=%s expires=%s\n", r, expiresAt.Format(time.RFC3339))
	return nil
}
