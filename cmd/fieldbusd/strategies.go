package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avtomat-labs/go-fieldbus/pnrpc"
	"github.com/avtomat-labs/go-fieldbus/strategy"
)

func newStrategiesCmd() *cobra.Command {
	var withOpnumVariants bool

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Print the connect strategy table in walk order",
		Run: func(cmd *cobra.Command, args []string) {
			table := strategy.DefaultTable()
			if withOpnumVariants {
				table = strategy.BuildTable(
					[]uint16{pnrpc.OpConnect, pnrpc.OpControl},
					strategy.Profiles(),
				)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tLABEL\tCYCLE\tUPDATE\tWATCHDOG")
			for i, st := range table {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					i, st.Label,
					st.Timing.CycleInterval(),
					st.Timing.UpdateInterval(),
					st.Timing.WatchdogDuration(),
				)
			}
			w.Flush()
		},
	}

	cmd.Flags().BoolVar(&withOpnumVariants, "opnum-variants", false,
		"include the legacy control-opnum dispatch variants")

	return cmd
}
