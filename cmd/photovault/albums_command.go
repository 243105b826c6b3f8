package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photovault/internal/library"
	"photovault/internal/logging"
)

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "albums",
		Short: "List albums in the cloud library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := library.NewClient(cfg.Library, logging.NewNop())
			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}
			albums, err := client.Albums(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, albums)
			}
			if len(albums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No albums found")
				return nil
			}

			rows := make([][]string, 0, len(albums))
			for _, album := range albums {
				rows = append(rows, []string{album.Title, album.MediaItemsCount, album.ID})
			}
			table := renderTable(
				[]string{"Title", "Items", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output albums as JSON")
	return cmd
}
