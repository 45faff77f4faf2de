package core

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"

	"blobular/pkg/types"
)

// CalculateBlobHash 计算原始数据的 Hash (SHA-1, 小写 Hex)
// 整个文件和单个 Chunk 共用这一个算法
func CalculateBlobHash(data []byte) types.Hash {
	sum := sha1.Sum(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// Digest 是一个流式的 Hash 计算器，用于边读边算 (fsck 重组校验、Builder)
type Digest struct {
	h hash.Hash
}

func NewDigest() *Digest {
	return &Digest{h: sha1.New()}
}

// Write 实现 io.Writer，永远不会返回错误
func (d *Digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

func (d *Digest) Sum() types.Hash {
	return types.Hash(hex.EncodeToString(d.h.Sum(nil)))
}
