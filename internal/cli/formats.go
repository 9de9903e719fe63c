package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewFormatsCmd creates the formats command.
func NewFormatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported report formats in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			formats := cliCtx.App.ParseService.Formats()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), formats)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRIORITY\tNAME\tDISPLAY NAME")
			for _, f := range formats {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Priority, f.Name, f.DisplayName)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
