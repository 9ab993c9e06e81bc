package cli

import (
	"errors"
	"fmt"
	"time"

	"parcel-delivery-api/middleware"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Mint a signed bearer token for local testing",
	Long: `Mint an HS256 bearer token for email, signed with JWT_SECRET.

Only useful with AUTH_PROVIDER=jwt.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	token, err := middleware.NewJWTVerifier(cfg.JWTSecret).GenerateToken(args[0], tokenTTL)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
