// Package repo locates and creates the .blobular directory that marks a repository.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	DirName    = ".blobular"
	ObjectsDir = "objects"
	IndexFile  = "index"
)

var (
	ErrNotFound            = errors.New("not a blobular repository (or any of the parent directories)")
	ErrAlreadyInRepository = errors.New("already inside a blobular repository")
)

// NotFoundError 表示从起点一直走到文件系统根都没有找到 .blobular
type NotFoundError struct {
	Start string
}

func (e *NotFoundError) Error() string { return ErrNotFound.Error() }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
func (e *NotFoundError) Notes() []string {
	return []string{"run `blobular init` to create a new blobular repository"}
}

// AlreadyInRepositoryError 记录已经存在的仓库位置
type AlreadyInRepositoryError struct {
	Root string
}

func (e *AlreadyInRepositoryError) Error() string { return ErrAlreadyInRepository.Error() }
func (e *AlreadyInRepositoryError) Unwrap() error { return ErrAlreadyInRepository }
func (e *AlreadyInRepositoryError) Notes() []string {
	return []string{"the root of the blobular repository is: " + e.Root}
}

// Repository 是一个已发现的仓库句柄，所有组件显式接收它，而不是各自重新查找
type Repository struct {
	// Root 是 .blobular 目录本身的绝对路径
	Root string
	Fs   afero.Fs
}

func (r *Repository) ObjectsPath() string { return filepath.Join(r.Root, ObjectsDir) }
func (r *Repository) IndexPath() string   { return filepath.Join(r.Root, IndexFile) }

// WorkTree 返回包含 .blobular 的目录
func (r *Repository) WorkTree() string { return filepath.Dir(r.Root) }

// Find 从 start 开始向上查找 .blobular 目录 (和 git 的逻辑一样)
func Find(fs afero.Fs, start string) (*Repository, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		candidate := filepath.Join(dir, DirName)
		fi, err := fs.Stat(candidate)
		if err == nil && fi.IsDir() {
			return &Repository{Root: candidate, Fs: fs}, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &NotFoundError{Start: start}
		}
		dir = parent
	}
}

// Init 在 dir 下创建 .blobular/objects
// 如果 dir 或它的任何上级已经在仓库里，返回 AlreadyInRepositoryError
func Init(fs afero.Fs, dir string) (*Repository, error) {
	existing, err := Find(fs, dir)
	if err == nil {
		return nil, &AlreadyInRepositoryError{Root: existing.Root}
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	r := &Repository{Root: filepath.Join(abs, DirName), Fs: fs}

	if err := fs.Mkdir(r.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	if err := fs.Mkdir(r.ObjectsPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	return r, nil
}
