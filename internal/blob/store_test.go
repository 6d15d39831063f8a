package blob

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	obj, err := store.Put(strings.NewReader("hello world"), ".pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(11), obj.Size)
	assert.True(t, strings.HasSuffix(obj.Key, ".pdf"))
	assert.Equal(t, obj.Checksum+".pdf", obj.Key)

	f, err := store.Open(obj.Key)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	assert.Equal(t, "http://localhost:8080/files/"+obj.Key, store.URL(obj.Key))
}

func TestStoreDeduplicatesContent(t *testing.T) {
	store, err := NewStore(t.TempDir(), "")
	require.NoError(t, err)

	first, err := store.Put(strings.NewReader("same bytes"), "pdf")
	require.NoError(t, err)
	second, err := store.Put(strings.NewReader("same bytes"), "pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
}

func TestStoreOpenStripsPathTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Open("../../../etc/passwd")
	require.Error(t, err)
}
