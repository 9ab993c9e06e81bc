package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to a user",
	Long: `Grant the admin role to a user, creating the account if needed.

Admins can only be made by other admins through the API, so use this to
bootstrap the first one.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func runPromote(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if err := a.services.Users.PromoteAdmin(ctx, args[0]); err != nil {
		return fmt.Errorf("promote %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
	return nil
}
