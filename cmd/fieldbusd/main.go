package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldbusd",
		Short: "Field-bus controller daemon",
		Long: `fieldbusd drives cyclic I/O to RPC-negotiated field devices. It walks a
deterministic table of connect parameter combinations per device, exchanges
cyclic frames on the negotiated timing, and exposes per-device health.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStrategiesCmd())
	rootCmd.AddCommand(newPcapCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
