package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blobular/pkg/core"
	"blobular/pkg/storage"
	"blobular/pkg/types"

	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// compressionLevel 固定为 zlib 默认级别；级别不影响 Hash，但保持输出稳定
const compressionLevel = zlib.DefaultCompression

// tempPattern 临时文件以非十六进制字符开头，不会被前缀扫描误匹配
const tempPattern = "tmp-*"

// Adapter 实现了 storage.Store 接口
type Adapter struct {
	fs       afero.Fs
	rootPath string // 比如: /home/user/project/.blobular/objects
	log      *zap.Logger
}

type Option func(*Adapter)

// WithFs 替换底层文件系统 (测试里用 afero.NewMemMapFs())
func WithFs(fs afero.Fs) Option {
	return func(a *Adapter) { a.fs = fs }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		fs:       afero.NewOsFs(),
		rootPath: root,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 确保根目录存在
	if err := a.fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return a, nil
}

// layout 返回哈希对应的物理路径
// 策略：使用前 2 个字符作为子目录 (Sharding)
// Example: hash "aabbcc..." -> root/aa/bbcc...
func (s *Adapter) layout(hash types.Hash) string {
	dir, file := hash.Shard()
	return filepath.Join(s.rootPath, dir, file)
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	hash := obj.ID()
	if !hash.IsValid() {
		return fmt.Errorf("refusing to store object under invalid hash %q", hash)
	}
	targetPath := s.layout(hash)

	// 1. 检查是否存在 (幂等性)，已有内容默认与新内容一致，不再校验
	fi, err := s.fs.Stat(targetPath)
	if err == nil {
		if fi.IsDir() {
			return fmt.Errorf("object path %s is a directory", targetPath)
		}
		s.log.Debug("object exists, skipping", zap.String("hash", hash.String()), zap.String("type", string(obj.Type())))
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat object %s: %w", hash, err)
	}

	// 2. 准备分片目录
	dir := filepath.Dir(targetPath)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create shard dir: %w", err)
	}

	// 3. 原子写入: 先压缩写入临时文件，再 Rename
	tempFile, err := afero.TempFile(s.fs, dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp object: %w", err)
	}
	// 成功 Rename 之后这个删除会失败，无害
	defer s.fs.Remove(tempFile.Name())

	if err := compress(tempFile, obj.Bytes()); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write object %s: %w", hash, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close object %s: %w", hash, err)
	}

	// 4. 移动到最终位置
	if err := s.fs.Rename(tempFile.Name(), targetPath); err != nil {
		return fmt.Errorf("failed to commit object %s: %w", hash, err)
	}

	s.log.Debug("object written",
		zap.String("hash", hash.String()),
		zap.String("type", string(obj.Type())),
		zap.Int("size", len(obj.Bytes())))
	return nil
}

func compress(w io.Writer, data []byte) error {
	zw, err := zlib.NewWriterLevel(w, compressionLevel)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// objectReader 关闭时同时关闭解压器和文件
type objectReader struct {
	io.ReadCloser
	file afero.File
}

func (r *objectReader) Close() error {
	return errors.Join(r.ReadCloser.Close(), r.file.Close())
}

// Get 打开对象并返回解压后的流。读取时不会校验内容和 Hash 是否匹配
func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	if !hash.IsValid() {
		return nil, storage.NotFound(hash)
	}
	targetPath := s.layout(hash)

	f, err := s.fs.Open(targetPath)
	if os.IsNotExist(err) {
		return nil, storage.NotFound(hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", hash, err)
	}

	zr, err := zlib.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decompress object %s: %w", hash, err)
	}
	return &objectReader{ReadCloser: zr, file: f}, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	if !hash.IsValid() {
		return false, nil
	}
	fi, err := s.fs.Stat(s.layout(hash))
	if err == nil {
		return !fi.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 扫描分片目录扩展短哈希
// 40 位的输入直接返回，不检查是否存在
func (s *Adapter) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	prefix = prefix.Normalize()

	if prefix.TooShort() {
		return "", &storage.PrefixError{Prefix: prefix, Err: storage.ErrInvalidPrefix}
	}
	if !prefix.IsHex() {
		return "", &storage.PrefixError{Prefix: prefix, Err: storage.ErrNotFound}
	}
	if prefix.IsFull() {
		return types.Hash(prefix), nil
	}

	shard, rest := string(prefix[:2]), string(prefix[2:])
	entries, err := afero.ReadDir(s.fs, filepath.Join(s.rootPath, shard))
	if os.IsNotExist(err) {
		return "", &storage.PrefixError{Prefix: prefix, Err: storage.ErrNotFound}
	}
	if err != nil {
		return "", fmt.Errorf("failed to list shard %s: %w", shard, err)
	}

	// ReadDir 已经按文件名排序
	var matches []types.Hash
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, rest) {
			continue
		}
		h := types.Hash(shard + name)
		if !h.IsValid() {
			continue
		}
		matches = append(matches, h)
	}

	s.log.Debug("expand hash", zap.String("prefix", prefix.String()), zap.Int("matches", len(matches)))

	switch len(matches) {
	case 0:
		return "", &storage.PrefixError{Prefix: prefix, Err: storage.ErrNotFound}
	case 1:
		return matches[0], nil
	default:
		return "", &storage.PrefixError{Prefix: prefix, Err: storage.ErrAmbiguousHash, Candidates: matches}
	}
}

// Walk 遍历所有分片目录，临时文件和不合法的文件名会被忽略
func (s *Adapter) Walk(ctx context.Context, fn func(types.Hash) error) error {
	shards, err := afero.ReadDir(s.fs, s.rootPath)
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		entries, err := afero.ReadDir(s.fs, filepath.Join(s.rootPath, shard.Name()))
		if err != nil {
			return fmt.Errorf("failed to list shard %s: %w", shard.Name(), err)
		}
		for _, e := range entries {
			h := types.Hash(shard.Name() + e.Name())
			if e.IsDir() || !h.IsValid() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(h); err != nil {
				return err
			}
		}
	}
	return nil
}
