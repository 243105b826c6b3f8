package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photovault/internal/library"
)

func newResetAuthCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset-auth",
		Short: "Remove the cached token so the next run re-authenticates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !force {
				fmt.Fprintf(out, "Remove cached token at %s? [y/N]: ", cfg.Library.TokenFile)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if !scanner.Scan() {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
				answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			removed, err := library.ResetAuth(cfg.Library.TokenFile)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(out, "Removed %s; run \"photovault login\" to re-authenticate\n", cfg.Library.TokenFile)
			} else {
				fmt.Fprintln(out, "No cached token found")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
