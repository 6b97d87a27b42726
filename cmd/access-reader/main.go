package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "access-reader",
	Short: "Badge reader that controls room access and reports events upstream",
	Long: `access-reader runs at the door: it reads badge scans, decides entry
and exit locally against a cached authorization directory, and delivers
the resulting events to the central server, buffering them on disk while
the network is down.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file (default $ACCESS_CONFIG)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(directoryCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
