package cmd

import (
	"fmt"

	"github.com/denismitr/stockresizer/internal/backoffice"
	"github.com/denismitr/stockresizer/internal/media"
	"github.com/spf13/cobra"
)

func newPurgeCmd(newService serviceFactory) *cobra.Command {
	var imageID, size string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove cached variants, originals are never touched",
		Long: "Remove cached variants of one image, of one size, a single variant when both\n" +
			"flags are given, or the whole processed directory when none are.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dto := backoffice.PurgeDTO{ImageID: imageID}
			if size != "" {
				w, h, err := media.ParseSize(size)
				if err != nil {
					return err
				}
				dto.Width, dto.Height = w, h
			}

			vs, err := newService()
			if err != nil {
				return err
			}

			removed, err := vs.Purge(cmd.Context(), dto)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached variants\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&imageID, "image", "", "only purge variants of this image id")
	cmd.Flags().StringVar(&size, "size", "", "only purge variants of this size, as WxH")

	return cmd
}
