package executiveproc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCheckpointAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rad.chkpt")

	require.NoError(t, writeCheckpoint(path, []byte("first")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first", string(got))

	require.NoError(t, writeCheckpoint(path, []byte("second, longer payload")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second, longer payload", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp files after a successful rename")
}
