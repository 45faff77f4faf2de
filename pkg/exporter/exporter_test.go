package exporter

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"blobular/pkg/core"
	"blobular/pkg/index"
	"blobular/pkg/ingester"
	"blobular/pkg/storage"
	"blobular/pkg/storage/disk"
	"blobular/pkg/types"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *disk.Adapter {
	t.Helper()
	store, err := disk.NewAdapter("/objects", disk.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	return store
}

func TestIngestAndExport_RoundTrip(t *testing.T) {
	sizes := map[string]int{
		"one byte":     1,
		"below min":    1000,
		"single chunk": 2048,
		"200KB":        200 * 1024,
		"500KB":        500 * 1024,
	}

	for name, size := range sizes {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ing := ingester.NewIngester(store, nil, nil)
			exp := NewExporter(store, nil)
			ctx := context.Background()

			originalData := make([]byte, size)
			rand.New(rand.NewSource(int64(size))).Read(originalData)

			manifest, err := ing.IngestFile(ctx, bytes.NewReader(originalData))
			require.NoError(t, err)

			var restored bytes.Buffer
			require.NoError(t, exp.CatFile(ctx, manifest.ID().String(), &restored))
			assert.Equal(t, len(originalData), restored.Len(), "文件大小应该一致")
			assert.True(t, bytes.Equal(originalData, restored.Bytes()), "数据必须逐字节还原")

			// 短哈希也可以
			restored.Reset()
			require.NoError(t, exp.CatFile(ctx, manifest.ID().String()[:12], &restored))
			assert.True(t, bytes.Equal(originalData, restored.Bytes()))
		})
	}
}

func TestCatBlob_RawPayload(t *testing.T) {
	store := newStore(t)
	ing := ingester.NewIngester(store, nil, nil)
	exp := NewExporter(store, nil)
	ctx := context.Background()

	content := make([]byte, 256*1024)
	rand.New(rand.NewSource(7)).Read(content)
	manifest, err := ing.IngestFile(ctx, bytes.NewReader(content))
	require.NoError(t, err)
	require.Greater(t, len(manifest.Chunks), 1)

	// cat-blob 对清单输出的是清单本身，不做解释
	var buf bytes.Buffer
	require.NoError(t, exp.CatBlob(ctx, manifest.ID().String(), &buf))
	assert.Equal(t, string(core.EncodeManifest(manifest.Chunks)), buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), "blob "))

	// cat-blob 对 Chunk 输出原始字节
	buf.Reset()
	require.NoError(t, exp.CatBlob(ctx, manifest.Chunks[0].String(), &buf))
	assert.Equal(t, manifest.Chunks[0], core.CalculateBlobHash(buf.Bytes()))
}

// 对象内容的 Hash 等于自己的名字时，cat-file 把它当作单 Chunk 文件直接输出，
// 不按清单解析 (单 Chunk 文件的清单和 Chunk 共用一个 Hash)
func TestCatFile_ChunkOfLargerFile(t *testing.T) {
	store := newStore(t)
	ing := ingester.NewIngester(store, nil, nil)
	exp := NewExporter(store, nil)
	ctx := context.Background()

	content := make([]byte, 256*1024)
	rand.New(rand.NewSource(11)).Read(content)
	manifest, err := ing.IngestFile(ctx, bytes.NewReader(content))
	require.NoError(t, err)
	require.Greater(t, len(manifest.Chunks), 1)

	raw, err := storage.ReadAll(ctx, store, manifest.Chunks[0])
	require.NoError(t, err)
	first := len(raw)

	var buf bytes.Buffer
	require.NoError(t, exp.CatFile(ctx, manifest.Chunks[0].String(), &buf))
	assert.Equal(t, content[:first], buf.Bytes())

	chunks, payload, self, err := exp.ReadManifest(ctx, manifest.Chunks[0])
	require.NoError(t, err)
	assert.True(t, self)
	assert.Nil(t, chunks)
	assert.Equal(t, content[:first], payload)
}

func TestCatFile_Errors(t *testing.T) {
	store := newStore(t)
	exp := NewExporter(store, nil)
	ctx := context.Background()

	// 一个缺失 Chunk 的清单
	missingChunk := core.CalculateBlobHash([]byte("never stored"))
	broken := core.NewManifest(core.CalculateBlobHash([]byte("broken file")), 12, []types.Hash{missingChunk})
	require.NoError(t, store.Put(ctx, broken))

	t.Run("Missing chunk", func(t *testing.T) {
		err := exp.CatFile(ctx, broken.ID().String(), &bytes.Buffer{})
		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.Contains(t, err.Error(), missingChunk.String())
	})

	t.Run("Too short", func(t *testing.T) {
		err := exp.CatFile(ctx, "abc", &bytes.Buffer{})
		assert.ErrorIs(t, err, storage.ErrInvalidPrefix)
	})

	t.Run("Unknown full hash", func(t *testing.T) {
		err := exp.CatFile(ctx, strings.Repeat("e", 40), &bytes.Buffer{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Malformed manifest", func(t *testing.T) {
		garbage := fakeObject{id: core.CalculateBlobHash([]byte("other")), data: []byte("hello\nworld\n")}
		require.NoError(t, store.Put(ctx, garbage))

		err := exp.CatFile(ctx, garbage.id.String(), &bytes.Buffer{})
		require.ErrorIs(t, err, core.ErrMalformedManifest)
		assert.Equal(t, "invalid blob: hello", err.Error())

		// cat-blob 不解释内容，所以没问题
		var buf bytes.Buffer
		require.NoError(t, exp.CatBlob(ctx, garbage.id.String(), &buf))
		assert.Equal(t, "hello\nworld\n", buf.String())
	})
}

func TestCatBlob_AmbiguousPrefix(t *testing.T) {
	store := newStore(t)
	exp := NewExporter(store, nil)
	ctx := context.Background()

	a := fakeObject{id: types.Hash("abcdef" + strings.Repeat("1", 34)), data: []byte("a")}
	b := fakeObject{id: types.Hash("abcdef" + strings.Repeat("2", 34)), data: []byte("b")}
	require.NoError(t, store.Put(ctx, a))
	require.NoError(t, store.Put(ctx, b))

	err := exp.CatBlob(ctx, "abcdef", &bytes.Buffer{})
	var pe *storage.PrefixError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, storage.ErrAmbiguousHash)
	assert.Equal(t, []types.Hash{a.id, b.id}, pe.Candidates)

	var buf bytes.Buffer
	require.NoError(t, exp.CatBlob(ctx, "abcdef1", &buf))
	assert.Equal(t, "a", buf.String())
}

func TestPrintIndex(t *testing.T) {
	entries := []index.Entry{
		{Path: "a.bin", Hash: types.Hash(strings.Repeat("a", 40)), Size: 2048, Chunks: 1, AddedAt: time.Now()},
		{Path: "big/model.bin", Hash: types.Hash(strings.Repeat("b", 40)), Size: 5 * 1024 * 1024, Chunks: 1200},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintIndex(entries, &buf, 0))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], strings.Repeat("a", 40))
	assert.Contains(t, lines[0], "2.0 KiB")
	assert.True(t, strings.HasSuffix(lines[1], "big/model.bin"))
	assert.Contains(t, lines[1], "5.0 MiB")

	buf.Reset()
	require.NoError(t, PrintIndex(entries, &buf, 8))
	assert.True(t, strings.HasPrefix(buf.String(), "aaaaaaaa  "))
}

type fakeObject struct {
	id   types.Hash
	data []byte
}

func (f fakeObject) ID() types.Hash        { return f.id }
func (f fakeObject) Bytes() []byte         { return f.data }
func (f fakeObject) Type() core.ObjectType { return core.TypeChunk }
