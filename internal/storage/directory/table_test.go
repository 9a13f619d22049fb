package directory

import (
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFile only needs a name; identity is the pointer.
type stubFile struct{ name string }

func (s *stubFile) ReadPage(util.PageID) (*page.Page, error) { return nil, util.ErrPageNotFound }
func (s *stubFile) WritePage(*page.Page) error               { return nil }
func (s *stubFile) AllocatePage() (*page.Page, error)        { return nil, nil }
func (s *stubFile) DeletePage(util.PageID) error             { return nil }
func (s *stubFile) Filename() string                         { return s.name }

// sliceFile is a value-receiver Filer whose dynamic type cannot be compared.
type sliceFile struct{ names []string }

func (s sliceFile) ReadPage(util.PageID) (*page.Page, error) { return nil, util.ErrPageNotFound }
func (s sliceFile) WritePage(*page.Page) error               { return nil }
func (s sliceFile) AllocatePage() (*page.Page, error)        { return nil, nil }
func (s sliceFile) DeletePage(util.PageID) error             { return nil }
func (s sliceFile) Filename() string                         { return s.names[0] }

func TestSizeFor(t *testing.T) {
	assert.Equal(t, 4, SizeFor(3))
	assert.Equal(t, 13, SizeFor(10))
	assert.Equal(t, 1201, SizeFor(1000))
}

func TestTable(t *testing.T) {
	a := &stubFile{name: "a.db"}
	b := &stubFile{name: "b.db"}

	t.Run("LookupMissIsNotAnError", func(t *testing.T) {
		tbl := NewTable(SizeFor(3))
		frame, ok := tbl.Lookup(a, 1)
		assert.False(t, ok)
		assert.Equal(t, util.FrameID(-1), frame)
	})

	t.Run("InsertLookupRemove", func(t *testing.T) {
		tbl := NewTable(SizeFor(3))
		require.NoError(t, tbl.Insert(a, 1, 0))
		require.NoError(t, tbl.Insert(b, 1, 1), "same page number in another file")
		require.NoError(t, tbl.Insert(a, 2, 2))
		assert.Equal(t, 3, tbl.Len())

		frame, ok := tbl.Lookup(a, 1)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(0), frame)
		frame, ok = tbl.Lookup(b, 1)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(1), frame)

		assert.True(t, tbl.Remove(a, 1))
		assert.False(t, tbl.Remove(a, 1), "second remove finds nothing")
		_, ok = tbl.Lookup(a, 1)
		assert.False(t, ok)
		_, ok = tbl.Lookup(b, 1)
		assert.True(t, ok, "other file untouched")
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("DuplicateInsert", func(t *testing.T) {
		tbl := NewTable(1)
		require.NoError(t, tbl.Insert(a, 5, 0))
		assert.ErrorIs(t, tbl.Insert(a, 5, 1), util.ErrHashEntryExists)
		frame, _ := tbl.Lookup(a, 5)
		assert.Equal(t, util.FrameID(0), frame, "original mapping kept")
	})

	t.Run("SameNameDifferentFile", func(t *testing.T) {
		tbl := NewTable(4)
		twin := &stubFile{name: "a.db"}
		require.NoError(t, tbl.Insert(a, 1, 0))
		require.NoError(t, tbl.Insert(twin, 1, 1))

		frame, ok := tbl.Lookup(twin, 1)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(1), frame)
	})

	t.Run("SingleBucketChain", func(t *testing.T) {
		tbl := NewTable(1)
		for i := util.PageID(1); i <= 20; i++ {
			require.NoError(t, tbl.Insert(a, i, util.FrameID(i)))
		}
		for i := util.PageID(20); i >= 1; i -= 2 {
			assert.True(t, tbl.Remove(a, i))
		}
		for i := util.PageID(1); i <= 20; i++ {
			frame, ok := tbl.Lookup(a, i)
			assert.Equal(t, i%2 == 1, ok, "page %d", i)
			if ok {
				assert.Equal(t, util.FrameID(i), frame)
			}
		}
		assert.Equal(t, 10, tbl.Len())
	})

	t.Run("IncomparableFilerRejected", func(t *testing.T) {
		tbl := NewTable(1)
		require.NoError(t, tbl.Insert(a, 1, 0))

		odd := sliceFile{names: []string{"a.db"}}
		assert.ErrorIs(t, tbl.Insert(odd, 1, 1), util.ErrFilerNotComparable)
		assert.Equal(t, 1, tbl.Len())

		assert.NotPanics(t, func() {
			_, ok := tbl.Lookup(odd, 1)
			assert.False(t, ok)
			assert.False(t, tbl.Remove(odd, 1))
		})
		_, ok := tbl.Lookup(a, 1)
		assert.True(t, ok)
	})

	t.Run("NilFilerRejected", func(t *testing.T) {
		tbl := NewTable(1)
		assert.ErrorIs(t, tbl.Insert(nil, 1, 0), util.ErrFileManagerNil)
	})

	t.Run("ZeroSizePanics", func(t *testing.T) {
		assert.Panics(t, func() { NewTable(0) })
	})
}
