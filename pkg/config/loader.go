package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// 配置键
const (
	KeyLogLevel    = "log.level"
	KeyRepoDir     = "repo.dir"
	KeyFsckWorkers = "fsck.workers"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
// 注意：不能往 stdout 打印任何东西，cat-blob/cat-file 的输出必须是原始字节
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 不放在 ~/.blobular 下：那会让 home 下所有目录都"在仓库里"
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "blobular"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (BLOBULAR_LOG_LEVEL 等)
	viper.SetEnvPrefix("BLOBULAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件；没找到不算错
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyRepoDir, ".")
	viper.SetDefault(KeyFsckWorkers, runtime.NumCPU())
}
