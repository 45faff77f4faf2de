package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blobular/pkg/core"
	"blobular/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
	ErrInvalidPrefix = errors.New("hash prefix too short")
)

// Store defines the interface for a content-addressed object store.
// Objects are immutable: the first Put under a hash wins, later Puts are no-ops.
type Store interface {
	// Put 将一个核心对象持久化 (压缩后写入)
	// Hash 已经在 core.Object 里了；如果已存在则直接返回 nil，不校验内容
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取解压后的原始负载
	// 返回 io.ReadCloser 以支持流式读取
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把短哈希扩展为唯一的完整 Hash
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)

	// Walk 按字典序遍历所有对象的 Hash
	Walk(ctx context.Context, fn func(types.Hash) error) error
}

// PrefixError 描述短哈希解析失败的原因
// Err 是 ErrInvalidPrefix / ErrNotFound / ErrAmbiguousHash 之一
type PrefixError struct {
	Prefix     types.HashPrefix
	Err        error
	Candidates []types.Hash // 仅在 ErrAmbiguousHash 时填充
}

func (e *PrefixError) Error() string {
	if errors.Is(e.Err, ErrNotFound) {
		return fmt.Sprintf("%s: %s", e.Err, e.Prefix)
	}
	return fmt.Sprintf("ambiguous argument: %s", e.Prefix)
}

func (e *PrefixError) Unwrap() error { return e.Err }

// Notes 返回给用户的补充说明 (由 CLI 打印为 "note:" 行)
func (e *PrefixError) Notes() []string {
	switch {
	case errors.Is(e.Err, ErrInvalidPrefix):
		return []string{fmt.Sprintf("minimum length of a hash is %d characters", types.MinPrefixLen)}
	case errors.Is(e.Err, ErrAmbiguousHash):
		notes := []string{"the following objects start with the given hash:"}
		for _, c := range e.Candidates {
			notes = append(notes, "  "+string(c))
		}
		return notes
	}
	return nil
}

// CheckPrefix 在访问文件系统之前做的格式检查
func CheckPrefix(prefix types.HashPrefix) error {
	if prefix.TooShort() {
		return &PrefixError{Prefix: prefix, Err: ErrInvalidPrefix}
	}
	return nil
}

// NotFound 构造一个带 Hash 的 ErrNotFound
func NotFound(hash types.Hash) error {
	return fmt.Errorf("%w: %s", ErrNotFound, hash)
}

// ReadAll 读取整个对象到内存
func ReadAll(ctx context.Context, s Store, hash types.Hash) ([]byte, error) {
	rc, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", hash, err)
	}
	return data, nil
}

// Resolve 先做格式检查，再扩展短哈希，最后确认对象存在
func Resolve(ctx context.Context, s Store, input string) (types.Hash, error) {
	prefix := types.HashPrefix(input).Normalize()
	if err := CheckPrefix(prefix); err != nil {
		return "", err
	}

	hash, err := s.ExpandHash(ctx, prefix)
	if err != nil {
		return "", err
	}

	ok, err := s.Has(ctx, hash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NotFound(hash)
	}
	return hash, nil
}
