package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kamishibai/internal/auth"
)

func newAuthCommand(cmdCtx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Upload credential utilities",
	}

	authCmd.AddCommand(newAuthRefreshCommand(cmdCtx))
	authCmd.AddCommand(newAuthEncodeCommand(cmdCtx))
	return authCmd
}

func newAuthRefreshCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a token refresh and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			token, err := auth.Refresh(cmd.Context(), cfg.YouTube)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed; expires %s\n", token.Expiry.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

// newAuthEncodeCommand prints the credential files base64-encoded, ready to
// paste into automation secrets.
func newAuthEncodeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Print credentials base64-encoded for automation secrets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			secrets, token, err := auth.EncodeCredentials(cfg.YouTube)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s:\n%s\n\n", auth.EnvClientSecrets, secrets)
			fmt.Fprintf(out, "%s:\n%s\n", auth.EnvToken, token)
			return nil
		},
	}
}
