package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(newService serviceFactory) *cobra.Command {
	var imageID string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List cached variants",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs, err := newService()
			if err != nil {
				return err
			}

			variants, err := vs.List(cmd.Context(), imageID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
			for _, v := range variants {
				modified := ""
				if v.ModTime != nil {
					modified = v.ModTime.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", v.Key, v.Size, modified)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&imageID, "image", "", "only list variants of this image id")

	return cmd
}
