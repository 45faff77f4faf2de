package commands

import (
	"errors"
	"fmt"

	"blobular/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errFsckFailed = errors.New("repository check failed")

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Verify the integrity of every stored object",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := BL.Checker(viper.GetInt(config.KeyFsckWorkers)).Run(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range report.Problems {
			fmt.Fprintf(out, "%s %s: %s\n", p.Status, p.Hash, p.Reason)
		}

		if !report.OK() {
			return fmt.Errorf("%w: %d problem(s)", errFsckFailed, len(report.Problems))
		}
		return nil
	},
}

func init() {
	fsckCmd.Flags().Int("workers", 0, "Number of objects verified in parallel (default: number of CPUs)")
	cobra.CheckErr(viper.BindPFlag(config.KeyFsckWorkers, fsckCmd.Flags().Lookup("workers")))
	rootCmd.AddCommand(fsckCmd)
}
