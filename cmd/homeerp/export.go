package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"homeerp/internal/blob"
	"homeerp/internal/platform/config"
)

type exportResult struct {
	Export blob.Info `json:"export"`
	Pruned []string  `json:"pruned,omitempty"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of every collection to blob storage",
		Long: `Write a snapshot of every collection to the configured blob store
(HOMEERP_BLOB_DRIVER) and print the stored object as JSON.

Examples:
  # One-off export to ./blobdata/exports/
  homeerp export

  # Export and keep only the 7 newest snapshots
  homeerp export --keep=7
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			keep, _ := cmd.Flags().GetInt("keep")
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.logger.Error("close store", "error", err)
				}
			}()

			info, err := a.exporter.Export(ctx)
			if err != nil {
				return err
			}
			result := exportResult{Export: info}
			if keep > 0 {
				if result.Pruned, err = a.exporter.Prune(ctx, keep); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().Int("keep", 0, "Delete all but the newest N exports after writing (0 keeps everything)")
	return cmd
}
