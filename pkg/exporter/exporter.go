package exporter

import (
	"context"
	"fmt"
	"io"

	"blobular/pkg/core"
	"blobular/pkg/storage"
	"blobular/pkg/types"

	"go.uber.org/zap"
)

type Exporter struct {
	store storage.Store
	log   *zap.Logger
}

func NewExporter(store storage.Store, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{store: store, log: log}
}

// CatBlob 解析 (短) 哈希，把解压后的原始负载原样写入 writer，不做清单解释
func (e *Exporter) CatBlob(ctx context.Context, input string, writer io.Writer) error {
	hash, err := storage.Resolve(ctx, e.store, input)
	if err != nil {
		return err
	}
	return e.streamBlob(ctx, hash, writer)
}

// CatFile 解析 (短) 哈希，把清单指向的所有 Chunk 按顺序写入 writer，还原原始文件
func (e *Exporter) CatFile(ctx context.Context, input string, writer io.Writer) error {
	hash, err := storage.Resolve(ctx, e.store, input)
	if err != nil {
		return err
	}
	return e.ExportFile(ctx, hash, writer)
}

// ReadManifest 读取并解析清单，返回有序的 Chunk Hash 列表。
// 只有一个 Chunk 的文件，清单和 Chunk 的 Hash 相同，磁盘上保存的是 Chunk 本身：
// 这种情况返回 self=true，负载就是文件内容
func (e *Exporter) ReadManifest(ctx context.Context, hash types.Hash) (chunks []types.Hash, payload []byte, self bool, err error) {
	payload, err = storage.ReadAll(ctx, e.store, hash)
	if err != nil {
		return nil, nil, false, err
	}
	if core.CalculateBlobHash(payload) == hash {
		return nil, payload, true, nil
	}
	chunks, err = core.DecodeManifest(payload)
	if err != nil {
		return nil, nil, false, err
	}
	return chunks, payload, false, nil
}

// ExportFile 根据清单的 Hash，将还原的文件写入 writer
func (e *Exporter) ExportFile(ctx context.Context, hash types.Hash, writer io.Writer) error {
	chunks, payload, self, err := e.ReadManifest(ctx, hash)
	if err != nil {
		return err
	}
	if self {
		e.log.Debug("single chunk file", zap.String("hash", hash.String()))
		_, err := writer.Write(payload)
		return err
	}

	e.log.Debug("exporting file", zap.String("hash", hash.String()), zap.Int("chunks", len(chunks)))

	// 按顺序迭代，每个 Chunk 走和 cat-blob 相同的解析 + 流式输出
	for _, c := range chunks {
		full, err := storage.Resolve(ctx, e.store, string(c))
		if err != nil {
			return err
		}
		if err := e.streamBlob(ctx, full, writer); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) streamBlob(ctx context.Context, hash types.Hash, writer io.Writer) error {
	reader, err := e.store.Get(ctx, hash)
	if err != nil {
		return err
	}
	// 函数返回时立即关闭，不会堆积句柄
	defer reader.Close()

	if _, err := io.Copy(writer, reader); err != nil {
		return fmt.Errorf("failed to write object %s: %w", hash, err)
	}
	return nil
}
