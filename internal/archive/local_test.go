package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	t.Parallel()

	a, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("RIFF fake wav payload")
	ref, err := a.Store(ctx, payload, "spk_abcd1234")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "spk_abcd1234/"))
	require.True(t, strings.HasSuffix(ref, ".wav"))

	got, err := a.Load(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.NoError(t, a.Delete(ctx, ref))
	_, err = a.Load(ctx, ref)
	require.Error(t, err)
}

func TestLocalStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a, err := NewLocal(root)
	require.NoError(t, err)

	ref, err := a.Store(context.Background(), []byte("data"), "spk_ffff0000")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, filepath.Dir(filepath.FromSlash(ref))))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, strings.HasSuffix(entries[0].Name(), ".tmp"))
}

func TestLocalRejectsEscapingReferences(t *testing.T) {
	t.Parallel()

	a, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, ref := range []string{"../outside.wav", "..", "/etc/passwd", "spk_x/../../outside.wav"} {
		_, err := a.Load(ctx, ref)
		require.Error(t, err, "ref %q", ref)
		require.Contains(t, err.Error(), "invalid archive reference")
	}
}

func TestLocalDeleteMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	a, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, a.Delete(context.Background(), "spk_none/20260101T000000_aaaaaaaa.wav"))
}

func TestLocalRefsAreUnique(t *testing.T) {
	t.Parallel()

	a, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := a.Store(ctx, []byte("one"), "spk_abcd1234")
	require.NoError(t, err)
	second, err := a.Store(ctx, []byte("two"), "spk_abcd1234")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
