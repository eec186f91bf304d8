package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newColumnsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns FILE",
		Short: "List the price columns of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.readDataset(cmd, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "#\tCOLUMN")
			for i, name := range ds.Columns {
				fmt.Fprintf(w, "%d\t%s\n", i+1, name)
			}
			fmt.Fprintf(w, "\n%d rows\n", ds.Len())
			return w.Flush()
		},
	}
}
