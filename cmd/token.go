package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed identity token for the HTTP API",
	Long: `Issue a bearer token signed with QUIZCRAFT_JWT_SECRET.

The server must run with the same secret for the token to verify.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return fmt.Errorf("QUIZCRAFT_JWT_SECRET is not set")
		}
		signer, err := newSigner(cfg)
		if err != nil {
			return err
		}
		tok, err := signer.Issue(user, name)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User ID carried as the token subject (required)")
	tokenCmd.Flags().String("name", "", "Display name")
	_ = tokenCmd.MarkFlagRequired("user")
}
