package core

import "blobular/pkg/types"

// ObjectType 定义了对象库中的对象类型
// 注意：磁盘上不记录类型，类型只存在于内存里
type ObjectType string

const (
	TypeChunk    ObjectType = "chunk"    // 原始数据块
	TypeManifest ObjectType = "manifest" // 文件清单 (parent blob)
)

// Object 是所有可持久化对象的通用接口
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象存储时使用的 Hash
	// 对 Manifest 来说是整个文件内容的 Hash，而不是清单字节的 Hash
	ID() types.Hash

	// Bytes 返回要写入存储的原始负载 (压缩之前)
	Bytes() []byte
}
