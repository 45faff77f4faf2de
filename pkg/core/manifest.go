package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"blobular/pkg/types"
)

// manifestLinePrefix 是清单中每一行的固定前缀
const manifestLinePrefix = "blob "

// ErrMalformedManifest 表示对象负载不是合法的清单
var ErrMalformedManifest = errors.New("invalid blob")

// Manifest (parent blob) 按顺序记录一个文件的所有 Chunk Hash
// 格式:
//
//	blob <chunk-hash>\n
//	blob <chunk-hash>\n
//
// 它以整个文件内容的 Hash 作为存储键，相同内容的文件会落到同一个清单上
type Manifest struct {
	hash      types.Hash
	rawBytes  []byte
	Chunks    []types.Hash
	TotalSize int64
}

// NewManifest 用文件 Hash 和有序的 Chunk Hash 列表创建清单
func NewManifest(fileHash types.Hash, totalSize int64, chunks []types.Hash) *Manifest {
	return &Manifest{
		hash:      fileHash,
		rawBytes:  EncodeManifest(chunks),
		Chunks:    chunks,
		TotalSize: totalSize,
	}
}

func (m *Manifest) Type() ObjectType { return TypeManifest }
func (m *Manifest) ID() types.Hash   { return m.hash }
func (m *Manifest) Bytes() []byte    { return m.rawBytes }
func (m *Manifest) Size() int64      { return m.TotalSize }

// EncodeManifest 把 Chunk Hash 列表编码成清单字节，空列表编码为空字节
func EncodeManifest(chunks []types.Hash) []byte {
	var buf bytes.Buffer
	buf.Grow(len(chunks) * (len(manifestLinePrefix) + types.HashLen + 1))
	for _, h := range chunks {
		buf.WriteString(manifestLinePrefix)
		buf.WriteString(string(h))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeManifest 解析清单字节，返回有序的 Chunk Hash 列表
// 遇到第一行不以 "blob " 开头的内容即报错；空负载解析为空列表
func DecodeManifest(data []byte) ([]types.Hash, error) {
	text := strings.TrimRight(string(data), " \t\r\n\v\f")
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	chunks := make([]types.Hash, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, manifestLinePrefix)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMalformedManifest, line)
		}
		chunks = append(chunks, types.Hash(rest))
	}
	return chunks, nil
}

// ManifestBuilder 在遍历 Chunk 的同时累积整个文件的 Hash，
// 不需要第二次读取文件
type ManifestBuilder struct {
	digest *Digest
	chunks []types.Hash
	size   int64
}

func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{digest: NewDigest()}
}

// Add 追加一个 Chunk，调用顺序即文件中的顺序
func (b *ManifestBuilder) Add(c *Chunk) {
	b.digest.Write(c.Bytes())
	b.chunks = append(b.chunks, c.ID())
	b.size += c.Size()
}

func (b *ManifestBuilder) Build() (*Manifest, error) {
	if len(b.chunks) == 0 {
		return nil, fmt.Errorf("manifest has no chunks")
	}
	return NewManifest(b.digest.Sum(), b.size, b.chunks), nil
}
