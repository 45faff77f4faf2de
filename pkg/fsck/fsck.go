// Package fsck verifies the object tree: every object must either hash to its
// own name (a chunk) or be a manifest whose reassembled content hashes to its name.
package fsck

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blobular/pkg/core"
	"blobular/pkg/storage"
	"blobular/pkg/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusChunk   Status = "chunk"
	StatusFile    Status = "file"
	StatusCorrupt Status = "corrupt"
	StatusMissing Status = "missing"
)

type Result struct {
	Hash   types.Hash
	Status Status
	Reason string
}

type Report struct {
	Objects int
	Chunks  int
	Files   int
	// Problems 按 Hash 排序 (和 Walk 的顺序一致)
	Problems []Result
}

func (r *Report) OK() bool { return len(r.Problems) == 0 }

type Checker struct {
	store   storage.Store
	workers int
	log     *zap.Logger
}

func NewChecker(store storage.Store, workers int, log *zap.Logger) *Checker {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{store: store, workers: workers, log: log}
}

// Run 检查所有对象。单个对象损坏记入报告，只有存储层本身出错才返回 error
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	var hashes []types.Hash
	if err := c.store.Walk(ctx, func(h types.Hash) error {
		hashes = append(hashes, h)
		return nil
	}); err != nil {
		return nil, err
	}

	results := make([]Result, len(hashes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, h := range hashes {
		i, h := i, h
		g.Go(func() error {
			res, err := c.check(gctx, h)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Objects: len(hashes)}
	for _, res := range results {
		switch res.Status {
		case StatusChunk:
			report.Chunks++
		case StatusFile:
			report.Files++
		default:
			report.Problems = append(report.Problems, res)
		}
	}
	c.log.Info("fsck finished",
		zap.Int("objects", report.Objects),
		zap.Int("chunks", report.Chunks),
		zap.Int("files", report.Files),
		zap.Int("problems", len(report.Problems)))
	return report, nil
}

func (c *Checker) check(ctx context.Context, hash types.Hash) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	payload, err := storage.ReadAll(ctx, c.store, hash)
	if err != nil {
		return Result{Hash: hash, Status: StatusCorrupt, Reason: err.Error()}, nil
	}

	// 1. 内容和名字一致：Chunk (也包括只有一个 Chunk 的文件)
	if core.CalculateBlobHash(payload) == hash {
		return Result{Hash: hash, Status: StatusChunk}, nil
	}

	// 2. 否则必须是清单
	chunks, err := core.DecodeManifest(payload)
	if err != nil {
		return Result{Hash: hash, Status: StatusCorrupt, Reason: "content does not match hash and is not a manifest"}, nil
	}

	// 3. 重组并校验整个文件的 Hash
	digest := core.NewDigest()
	for _, ch := range chunks {
		rc, err := c.store.Get(ctx, ch)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Hash: hash, Status: StatusMissing, Reason: fmt.Sprintf("missing chunk %s", ch)}, nil
		}
		if err != nil {
			return Result{Hash: hash, Status: StatusCorrupt, Reason: err.Error()}, nil
		}
		_, err = io.Copy(digest, rc)
		rc.Close()
		if err != nil {
			return Result{Hash: hash, Status: StatusCorrupt, Reason: fmt.Sprintf("chunk %s: %v", ch, err)}, nil
		}
	}
	if got := digest.Sum(); got != hash {
		return Result{Hash: hash, Status: StatusCorrupt, Reason: fmt.Sprintf("reassembled content hashes to %s", got)}, nil
	}

	c.log.Debug("manifest verified", zap.String("hash", hash.String()), zap.Int("chunks", len(chunks)))
	return Result{Hash: hash, Status: StatusFile}, nil
}
