package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"labparse/internal/normalize"
)

// NewDictCmd creates the dict command group.
func NewDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect the marker name dictionary",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report conflicting or unresolvable aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := normalize.Default()
			problems := d.Check()
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d dictionary problems", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d canonical markers, no problems\n", len(d.Canonicals()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <name>...",
		Short: "Show the canonical marker each name resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := normalize.Default()
			for _, name := range args {
				canonical, score := d.Resolve(name)
				if canonical == "" {
					canonical = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\n", name, canonical, score)
			}
			return nil
		},
	})
	return cmd
}
