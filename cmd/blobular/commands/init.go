package commands

import (
	"blobular/pkg/config"
	"blobular/pkg/repo"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty blobular repository in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := repo.Init(afero.NewOsFs(), viper.GetString(config.KeyRepoDir))
		if err != nil {
			return err
		}
		Log.Info("initialized empty repository", zap.String("root", r.Root))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
