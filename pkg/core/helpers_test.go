package core

import (
	"strings"
	"testing"

	"blobular/pkg/types"
)

// mockHash 生成一个合法的 40 字符 Hex 字符串
func mockHash(input string) types.Hash {
	return CalculateBlobHash([]byte(input))
}

// mustBuildManifest 依次加入 parts 并构建清单，失败直接终止测试
func mustBuildManifest(t *testing.T, parts ...string) *Manifest {
	t.Helper()
	b := NewManifestBuilder()
	for _, p := range parts {
		b.Add(NewChunk([]byte(p)))
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build manifest: %v", err)
	}
	return m
}

func joinParts(parts ...string) string { return strings.Join(parts, "") }
