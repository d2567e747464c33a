package main

import (
	"os"

	"github.com/spf13/cobra"

	"rfr/internal/prof"
	"rfr/internal/version"
)

var (
	cpuProfilePath string
	memProfilePath string
	showTimings    bool
)

var rootCmd = &cobra.Command{
	Use:   "rfr",
	Short: "RFR recording engine and inspection toolkit",
	Long:  `rfr records, inspects, and watches chunked async-runtime activity recordings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cpuProfilePath == "" {
			return nil
		}
		return prof.StartCPU(cpuProfilePath)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cpuProfilePath != "" {
			prof.StopCPU()
		}
		if memProfilePath != "" {
			return prof.WriteMem(memProfilePath)
		}
		return nil
	},
}

// main registers every subcommand and persistent flag, then executes
// the root command. A non-nil error exits the process with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "color mode (auto|on|off); accepted but not read by any subcommand")
	rootCmd.PersistentFlags().Bool("quiet", false, "quiet mode; accepted but not read by any subcommand")
	rootCmd.PersistentFlags().BoolVar(&showTimings, "timings", false, "show timing information")
	rootCmd.PersistentFlags().StringVar(&cpuProfilePath, "cpuprofile", "", "write a CPU profile to this path")
	rootCmd.PersistentFlags().StringVar(&memProfilePath, "memprofile", "", "write a heap profile to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
