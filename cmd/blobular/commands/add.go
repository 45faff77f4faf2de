package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Chunk files into the object store and print their hashes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ing := BL.Ingester()
		out := cmd.OutOrStdout()

		// 按顺序处理，第一个失败就停止；之前已经存储的对象保留
		for _, path := range args {
			m, err := ing.AddFile(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, m.ID())

			// 更新暂存区，每个文件落一次盘，中途失败也不会丢掉已加入的记录
			BL.Index.Add(BL.RelPath(path), m.ID(), m.Size(), len(m.Chunks))
			if err := BL.Index.Save(); err != nil {
				return fmt.Errorf("failed to save index: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
