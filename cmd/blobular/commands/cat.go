package commands

import (
	"blobular/pkg/storage"
	"blobular/pkg/types"

	"github.com/spf13/cobra"
)

// hashArg 要求恰好一个参数，并且在查找仓库之前就检查短哈希的长度
// (cobra 的 Args 校验早于 PersistentPreRunE)
func hashArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return storage.CheckPrefix(types.HashPrefix(args[0]).Normalize())
}

var catBlobCmd = &cobra.Command{
	Use:   "cat-blob <hash>",
	Short: "Print the raw payload of a stored object",
	Args:  hashArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return BL.Exporter().CatBlob(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

var catFileCmd = &cobra.Command{
	Use:   "cat-file <hash>",
	Short: "Reassemble a file from its manifest and print it",
	Args:  hashArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		return BL.Exporter().CatFile(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(catBlobCmd)
	rootCmd.AddCommand(catFileCmd)
}
