// pkg/app/app.go
package app

import (
	"fmt"
	"path/filepath"

	"blobular/pkg/config"
	"blobular/pkg/exporter"
	"blobular/pkg/fsck"
	"blobular/pkg/index"
	"blobular/pkg/ingester"
	"blobular/pkg/repo"
	"blobular/pkg/storage"
	"blobular/pkg/storage/disk"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 仓库句柄在这里显式传给每个组件，而不是各自重新查找
type App struct {
	Repo  *repo.Repository
	Store storage.Store
	Index *index.Index
	Log   *zap.Logger
}

// NewApp 是工厂函数：按 Viper 配置找到仓库并组装各组件
// 它不知道具体的 CLI 命令
func NewApp(log *zap.Logger) (*App, error) {
	fs := afero.NewOsFs()
	r, err := repo.Find(fs, viper.GetString(config.KeyRepoDir))
	if err != nil {
		return nil, err
	}
	return New(r, log)
}

// New 用一个已经找到的仓库组装 App (测试里可以传入 MemMapFs 上的仓库)
func New(r *repo.Repository, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := disk.NewAdapter(r.ObjectsPath(), disk.WithFs(r.Fs), disk.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	idx, err := index.NewIndex(r.Fs, r.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	return &App{
		Repo:  r,
		Store: store,
		Index: idx,
		Log:   log,
	}, nil
}

func (a *App) Ingester() *ingester.Ingester {
	return ingester.NewIngester(a.Store, a.Repo.Fs, a.Log)
}

func (a *App) Exporter() *exporter.Exporter {
	return exporter.NewExporter(a.Store, a.Log)
}

func (a *App) Checker(workers int) *fsck.Checker {
	return fsck.NewChecker(a.Store, workers, a.Log)
}

// RelPath 把用户给的路径转换成相对仓库工作目录的路径 (用作 Index 的 Key)
// 仓库外的文件保留绝对路径
func (a *App) RelPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(a.Repo.WorkTree(), abs)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return abs
	}
	return rel
}
