package ingester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"blobular/pkg/chunker"
	"blobular/pkg/core"
	"blobular/pkg/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrPathNotFound = errors.New("did not match any files")
	ErrEmptyFile    = errors.New("empty file")
)

type Ingester struct {
	store   storage.Store
	chunker *chunker.Chunker
	fs      afero.Fs
	log     *zap.Logger
}

func NewIngester(store storage.Store, fs afero.Fs, log *zap.Logger) *Ingester {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		store:   store,
		chunker: chunker.NewChunker(),
		fs:      fs,
		log:     log,
	}
}

// AddFile 检查路径是普通的非空文件，然后读入、切分、存储
func (ing *Ingester) AddFile(ctx context.Context, path string) (*core.Manifest, error) {
	fi, err := ing.fs.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("pathspec '%s' %w", path, ErrPathNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("pathspec '%s' %w", path, ErrPathNotFound)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	f, err := ing.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ing.IngestFile(ctx, f)
	if errors.Is(err, ErrEmptyFile) {
		// 文件在 Stat 之后被截断
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	ing.log.Info("file added",
		zap.String("path", path),
		zap.String("hash", m.ID().String()),
		zap.Int64("size", m.Size()),
		zap.Int("chunks", len(m.Chunks)))
	return m, nil
}

// IngestFile 读取一个文件流，切分，存储，并返回清单
// 清单存储在整个文件内容的 Hash 下
func (ing *Ingester) IngestFile(ctx context.Context, reader io.Reader) (*core.Manifest, error) {
	// 1. 读取全部数据 (内存占用 O(文件大小)，没有流式切分)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	builder := core.NewManifestBuilder()

	// 2. 切分
	cutPoints := ing.chunker.Cut(data)
	ing.log.Debug("file chunked", zap.Int("size", len(data)), zap.Int("chunks", len(cutPoints)))

	start := 0
	for _, end := range cutPoints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunkObj := core.NewChunk(data[start:end])

		// 3. 存储 Chunk (已存在则跳过)
		if err := ing.store.Put(ctx, chunkObj); err != nil {
			return nil, fmt.Errorf("failed to store chunk: %w", err)
		}

		builder.Add(chunkObj)
		start = end
	}

	// 4. 创建清单
	manifest, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest: %w", err)
	}

	// 5. 存储清单
	if err := ing.store.Put(ctx, manifest); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}

	return manifest, nil
}
