package buffer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected write failure")

// countingFile records every page transfer that reaches the file.
type countingFile struct {
	*file.FileManager
	reads      map[util.PageID]int
	writes     map[util.PageID]int
	failWrites bool
}

func (c *countingFile) ReadPage(pageId util.PageID) (*page.Page, error) {
	c.reads[pageId]++
	return c.FileManager.ReadPage(pageId)
}

func (c *countingFile) WritePage(p *page.Page) error {
	if c.failWrites {
		return errInjected
	}
	c.writes[p.PageNumber()]++
	return c.FileManager.WritePage(p)
}

func (c *countingFile) totalWrites() int {
	n := 0
	for _, w := range c.writes {
		n += w
	}
	return n
}

// newTestFile creates a file holding pages 1..pages, page i containing "page i".
func newTestFile(t *testing.T, pages int) *countingFile {
	t.Helper()
	path, cleanup := util.CreateTempFile(t)
	t.Cleanup(cleanup)

	fm, err := file.NewFileManager(path, pages+1)
	require.NoError(t, err, "create FileManager")
	t.Cleanup(func() { fm.Close() })

	for i := 0; i < pages; i++ {
		p, err := fm.AllocatePage()
		require.NoError(t, err)
		copy(p.Data[:], pageText(p.PageNumber()))
		require.NoError(t, fm.WritePage(p))
	}

	return &countingFile{
		FileManager: fm,
		reads:       map[util.PageID]int{},
		writes:      map[util.PageID]int{},
	}
}

func pageText(id util.PageID) string {
	return fmt.Sprintf("page %d", id)
}

// valueFile is a Filer passed by value whose type cannot be compared with ==.
type valueFile struct {
	*file.FileManager
	tags []string
}

func newTestMgr(n int) *BufMgr {
	return NewBufMgr(n, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// resident reports the frame holding pageNo of f.
func resident(bm *BufMgr, f file.Filer, pageNo util.PageID) (util.FrameID, bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.dir.Lookup(f, pageNo)
}
