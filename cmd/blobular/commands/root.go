package commands

import (
	"fmt"

	"blobular/pkg/app"
	"blobular/pkg/config"
	"blobular/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	configErr error

	// 全局应用实例，供子命令使用
	BL *app.App
	// Log 在 init 命令里也可用 (那时还没有 App)
	Log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blobular",
	Short: "Blobular: a content-addressed blob store with content-defined chunking",
	// 错误统一由 main 打印成 fatal: ... 并以 128 退出
	SilenceErrors: true,
	SilenceUsage:  true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}

		var err error
		Log, err = logger.GetLogger(viper.GetString(config.KeyLogLevel))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", viper.GetString(config.KeyLogLevel), err)
		}

		// 跳过 init 命令的仓库查找 (因为它就是去创建仓库的)
		if cmd.Name() == "init" {
			return nil
		}

		BL, err = app.NewApp(Log)
		return err
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/blobular/config.yaml)")

	// 2. 其它参数绑定到 Viper，这样既可以在 yaml 里写，也可以用命令行覆盖
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Directory to start the repository search from")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error, none)")
	cobra.CheckErr(viper.BindPFlag(config.KeyRepoDir, rootCmd.PersistentFlags().Lookup("dir")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")))
}

// initConfig 读取配置文件和环境变量
// 错误留到 PersistentPreRunE 里返回，保证走统一的 fatal 输出
func initConfig() {
	configErr = config.Load(cfgFile)
}
