package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndFind(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/project/sub/deeper", 0755))

	// 1. 初始化前找不到
	_, err := Find(fs, "/work/project/sub")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// 2. init
	r, err := Init(fs, "/work/project")
	require.NoError(t, err)
	assert.Equal(t, "/work/project/.blobular", r.Root)
	assert.Equal(t, "/work/project/.blobular/objects", r.ObjectsPath())
	assert.Equal(t, "/work/project", r.WorkTree())

	fi, err := fs.Stat("/work/project/.blobular/objects")
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// 3. 从任意子目录都能找到
	for _, start := range []string{"/work/project", "/work/project/sub", "/work/project/sub/deeper"} {
		found, err := Find(fs, start)
		require.NoError(t, err, start)
		assert.Equal(t, r.Root, found.Root)
	}

	// 4. 上级目录不在仓库里
	_, err = Find(fs, "/work")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInit_AlreadyInRepository(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/a/b", 0755))

	_, err := Init(fs, "/a")
	require.NoError(t, err)

	tests := []string{"/a", "/a/b"}
	for _, dir := range tests {
		t.Run(dir, func(t *testing.T) {
			_, err := Init(fs, dir)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAlreadyInRepository)

			var already *AlreadyInRepositoryError
			require.ErrorAs(t, err, &already)
			assert.Equal(t, "/a/.blobular", already.Root)
			assert.Equal(t, "already inside a blobular repository", err.Error())
			assert.Equal(t, []string{"the root of the blobular repository is: /a/.blobular"}, already.Notes())
		})
	}
}

func TestFind_IgnoresMarkerFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/x", 0755))
	// .blobular 是普通文件时不算仓库
	require.NoError(t, afero.WriteFile(fs, "/x/.blobular", []byte("nope"), 0644))

	_, err := Find(fs, "/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInit_OsFs(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(afero.NewOsFs(), dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, DirName, ObjectsDir))
	assert.NoError(t, err)
}
