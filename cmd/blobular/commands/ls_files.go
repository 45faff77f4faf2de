package commands

import (
	"fmt"

	"blobular/pkg/exporter"
	"blobular/pkg/index"
	"blobular/pkg/ingester"

	"github.com/spf13/cobra"
)

var abbrev int

var lsFilesCmd = &cobra.Command{
	Use:   "ls-files [path]...",
	Short: "Show the files recorded by add",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if BL.Index.IsEmpty() {
				Log.Debug("index is empty")
				return nil
			}
			return exporter.PrintIndex(BL.Index.Entries(), cmd.OutOrStdout(), abbrev)
		}

		// 只显示指定的路径；没有记录过的路径报错
		entries := make([]index.Entry, 0, len(args))
		for _, path := range args {
			e, ok := BL.Index.Lookup(BL.RelPath(path))
			if !ok {
				return fmt.Errorf("pathspec '%s' %w", path, ingester.ErrPathNotFound)
			}
			entries = append(entries, e)
		}
		return exporter.PrintIndex(entries, cmd.OutOrStdout(), abbrev)
	},
}

func init() {
	lsFilesCmd.Flags().IntVar(&abbrev, "abbrev", 0, "Show only the first n hex characters of each hash")
	rootCmd.AddCommand(lsFilesCmd)
}
