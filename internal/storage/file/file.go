package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

/**
* FileManager reads and writes pages of one database file.
* Page 0 holds the allocation state (next page number + free list),
* data pages start at 1 and deleted page numbers are reused.
**/
type FileManager struct {
	name       string
	store      store
	meta       fileMeta
	scratch    []byte
	syncWrites bool
	closed     bool
}

var _ Filer = (*FileManager)(nil)

// NewFileManager opens (or creates) a memory-mapped page file of at least initialPages pages.
func NewFileManager(path string, initialPages int) (*FileManager, error) {
	if initialPages <= 0 {
		return nil, util.ErrInvalidInitialPages
	}

	fresh := isEmpty(path)
	st, err := openMmapStore(path, int64(initialPages)*int64(util.PageSize))
	if err != nil {
		return nil, err
	}
	return open(path, st, fresh)
}

// OpenDirect opens (or creates) a page file that bypasses the OS page cache.
func OpenDirect(path string) (*FileManager, error) {
	fresh := isEmpty(path)
	st, err := openDirectStore(path)
	if err != nil {
		return nil, err
	}
	return open(path, st, fresh)
}

// Open picks the backend from opts.
func Open(opts util.Options) (*FileManager, error) {
	var (
		fm  *FileManager
		err error
	)
	if opts.DirectIO {
		fm, err = OpenDirect(opts.Path)
	} else {
		fm, err = NewFileManager(opts.Path, opts.InitialPages)
	}
	if err != nil {
		return nil, err
	}
	fm.syncWrites = opts.SyncWrites
	return fm, nil
}

func open(path string, st store, fresh bool) (*FileManager, error) {
	fm := &FileManager{
		name:    path,
		store:   st,
		scratch: make([]byte, util.PageSize),
	}

	if fresh {
		fm.meta = newFileMeta()
		if err := fm.writeMeta(); err != nil {
			st.close()
			return nil, fmt.Errorf("init meta page: %w", err)
		}
		return fm, nil
	}

	var metaPage page.Page
	if err := fm.readRaw(metaPageID, &metaPage); err != nil {
		st.close()
		return nil, fmt.Errorf("read meta page: %w", err)
	}
	meta, err := decodeFileMeta(&metaPage)
	if err != nil {
		st.close()
		return nil, err
	}
	fm.meta = meta
	return fm, nil
}

func isEmpty(path string) bool {
	st, err := os.Stat(path)
	return err != nil || st.Size() == 0
}

func (fm *FileManager) Filename() string {
	return fm.name
}

// Size is the current length of the backing file in bytes.
func (fm *FileManager) Size() int64 {
	return fm.store.size()
}

// PageCount is the number of allocated, not deleted, data pages.
func (fm *FileManager) PageCount() int {
	return fm.meta.live()
}

func (fm *FileManager) SetSyncWrites(on bool) {
	fm.syncWrites = on
}

/* READ FILE */
func (fm *FileManager) ReadPage(pageId util.PageID) (*page.Page, error) {
	if fm.closed {
		return nil, util.ErrFileClosed
	}
	if !fm.meta.allocated(pageId) {
		return nil, fmt.Errorf("read %s page %d: %w", fm.name, pageId, util.ErrPageNotFound)
	}

	p := &page.Page{}
	if err := fm.readRaw(pageId, p); err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", fm.name, pageId, err)
	}
	if p.PageNumber() != pageId {
		return nil, fmt.Errorf("read %s page %d: header says %d: %w", fm.name, pageId, p.PageNumber(), util.ErrInvalidPageId)
	}
	return p, nil
}

/* WRITE FILE */
func (fm *FileManager) WritePage(p *page.Page) error {
	if fm.closed {
		return util.ErrFileClosed
	}
	if !fm.meta.allocated(p.PageNumber()) {
		return fmt.Errorf("write %s page %d: %w", fm.name, p.PageNumber(), util.ErrPageNotFound)
	}
	return fm.writeRaw(p)
}

// AllocatePage hands out a zeroed page that already exists on disk.
func (fm *FileManager) AllocatePage() (*page.Page, error) {
	if fm.closed {
		return nil, util.ErrFileClosed
	}

	prev := fm.meta
	var id util.PageID
	if n := len(fm.meta.Free); n > 0 {
		id = fm.meta.Free[n-1]
		fm.meta.Free = fm.meta.Free[:n-1]
	} else {
		id = fm.meta.Next
		fm.meta.Next++
	}

	p := page.New(id, nil)
	if err := fm.writeRaw(p); err != nil {
		fm.meta = prev
		return nil, fmt.Errorf("allocate %s page %d: %w", fm.name, id, err)
	}
	if err := fm.writeMeta(); err != nil {
		fm.meta = prev
		return nil, fmt.Errorf("allocate %s page %d: %w", fm.name, id, err)
	}
	return p, nil
}

func (fm *FileManager) DeletePage(pageId util.PageID) error {
	if fm.closed {
		return util.ErrFileClosed
	}
	if !fm.meta.allocated(pageId) {
		return fmt.Errorf("delete %s page %d: %w", fm.name, pageId, util.ErrPageNotFound)
	}

	fm.meta.Free = append(fm.meta.Free, pageId)
	if err := fm.writeMeta(); err != nil {
		fm.meta.Free = fm.meta.Free[:len(fm.meta.Free)-1]
		return fmt.Errorf("delete %s page %d: %w", fm.name, pageId, err)
	}
	return nil
}

func (fm *FileManager) readRaw(pageId util.PageID, p *page.Page) error {
	if err := fm.store.readAt(fm.scratch, offset(pageId)); err != nil {
		return err
	}
	return page.DeserializeInto(p, fm.scratch)
}

func (fm *FileManager) writeRaw(p *page.Page) error {
	if err := p.SerializeTo(fm.scratch); err != nil {
		return err
	}
	if err := fm.store.writeAt(fm.scratch, offset(p.PageNumber())); err != nil {
		return err
	}
	if fm.syncWrites {
		return fm.store.sync()
	}
	return nil
}

func (fm *FileManager) writeMeta() error {
	var p page.Page
	if err := fm.meta.encode(&p); err != nil {
		return err
	}
	return fm.writeRaw(&p)
}

func offset(pageId util.PageID) int64 {
	return int64(pageId) * int64(util.PageSize)
}

/**
* CLOSE FUNCTION
**/
func (fm *FileManager) Close() error {
	if fm == nil || fm.closed {
		return nil // Idempotent
	}

	var err error
	if e := fm.writeMeta(); e != nil {
		err = errors.Join(err, fmt.Errorf("[close] write meta: %w", e))
	}
	if e := fm.store.close(); e != nil {
		err = errors.Join(err, e)
	}
	fm.closed = true
	return err
}
