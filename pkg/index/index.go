// pkg/index/index.go
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"blobular/pkg/types"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/afero"
)

// formatVersion 写在文件头部，格式变化时递增
const formatVersion = 1

// 规范化编码：Map Key 排序、时间存成 Unix 整数，相同内容生成相同字节
var encOptions = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	Time:        cbor.TimeUnix,
	TimeTag:     cbor.EncTagNone,
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	MaxMapPairs:     1 << 20,
	MaxNestedLevels: 16,
	IndefLength:     cbor.IndefLengthForbidden,
	DupMapKey:       cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

// Entry 记录一次 add 的结果
type Entry struct {
	Path    string     `cbor:"p"` // 相对仓库工作目录的路径 (如 "data/model.bin")
	Hash    types.Hash `cbor:"h"` // 整个文件的 Hash (清单的存储键)
	Size    int64      `cbor:"s"`
	Chunks  int        `cbor:"c"`
	AddedAt time.Time  `cbor:"t"`
}

type indexFile struct {
	Version int              `cbor:"v"`
	Entries map[string]Entry `cbor:"e"`
}

// Index 记录加入过仓库的文件；只做展示用，Hash 解析从不依赖它
type Index struct {
	fs      afero.Fs
	path    string // 物理文件路径 (.blobular/index)
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewIndex 加载或创建一个新的 Index
func NewIndex(fs afero.Fs, indexPath string) (*Index, error) {
	idx := &Index{
		fs:      fs,
		path:    indexPath,
		entries: make(map[string]Entry),
	}

	data, err := afero.ReadFile(fs, indexPath)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var f indexFile
	if err := dm.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("corrupted index file: %w", err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("unsupported index version %d", f.Version)
	}
	if f.Entries != nil {
		idx.entries = f.Entries
	}
	return idx, nil
}

// Add 更新一条记录，同一路径后写覆盖先写
func (i *Index) Add(path string, hash types.Hash, size int64, chunks int) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries[key] = Entry{
		Path:    key,
		Hash:    hash,
		Size:    size,
		Chunks:  chunks,
		AddedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Save 将 Index 持久化到磁盘 (先写临时文件再 Rename)
func (i *Index) Save() error {
	i.mu.RLock()
	data, err := em.Marshal(indexFile{Version: formatVersion, Entries: i.entries})
	i.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	dir := filepath.Dir(i.path)
	tmp, err := afero.TempFile(i.fs, dir, "index-*")
	if err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	defer i.fs.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	return i.fs.Rename(tmp.Name(), i.path)
}

// Entries 返回按路径排序的副本
func (i *Index) Entries() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	list := make([]Entry, 0, len(i.entries))
	for _, e := range i.entries {
		list = append(list, e)
	}
	slices.SortFunc(list, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return list
}

// Lookup 按路径查找
func (i *Index) Lookup(path string) (Entry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.entries[CleanPath(path)]
	return e, ok
}

// IsEmpty 检查是否有记录
func (i *Index) IsEmpty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries) == 0
}

func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
