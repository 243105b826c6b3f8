package main

import (
	"github.com/spf13/cobra"

	"photovault/internal/library"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to the cloud library",
		Long: "Login prints a consent URL, reads the pasted authorization code, " +
			"and stores the resulting token next to the credentials file. " +
			"Subsequent runs refresh the token automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return library.Login(cmd.Context(),
				cfg.Library.CredentialsFile, cfg.Library.TokenFile,
				cmd.OutOrStdout(), cmd.InOrStdin())
		},
	}
}
