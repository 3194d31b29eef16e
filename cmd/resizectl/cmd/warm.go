package cmd

import (
	"fmt"

	"github.com/denismitr/stockresizer/internal/backoffice"
	"github.com/denismitr/stockresizer/internal/media"
	"github.com/spf13/cobra"
)

func newWarmCmd(newService serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "warm <imageId> <WxH>...",
		Short:   "Derive variants ahead of the first request",
		Example: "  resizectl warm fjord.jpg 100x90 640x480",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := parseSizes(args[1:])
			if err != nil {
				return err
			}

			vs, err := newService()
			if err != nil {
				return err
			}

			for _, size := range sizes {
				info, derived, err := vs.Warm(cmd.Context(), backoffice.WarmVariantDTO{
					ImageID: args[0],
					Width:   size[0],
					Height:  size[1],
				})
				if err != nil {
					return err
				}

				state := "cached"
				if derived {
					state = "derived"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", state, info.Key, info.Size)
			}

			return nil
		},
	}
}

func parseSizes(args []string) ([][2]int, error) {
	sizes := make([][2]int, 0, len(args))
	for _, arg := range args {
		w, h, err := media.ParseSize(arg)
		if err != nil {
			return nil, err
		}

		sizes = append(sizes, [2]int{w, h})
	}

	return sizes, nil
}
