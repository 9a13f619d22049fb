package buffer

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/directory"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// BufMgr caches pages of any number of files in a fixed set of frames and
// replaces them with the clock algorithm. A page is never evicted while a
// caller holds a pin on it.
type BufMgr struct {
	mu        sync.Mutex
	numBufs   int
	pool      []page.Page // frame contents
	descs     []FrameDesc
	dir       *directory.Table
	clockHand util.FrameID
	stats     counters
	logger    *slog.Logger
}

type counters struct {
	hits, misses, evictions, writeBacks uint64
}

// NewBufMgr allocates numBufs frames. It panics if numBufs is not positive.
func NewBufMgr(numBufs int, logger *slog.Logger) *BufMgr {
	if numBufs <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	if logger == nil {
		logger = slog.Default()
	}

	bm := &BufMgr{
		numBufs:   numBufs,
		pool:      make([]page.Page, numBufs),
		descs:     make([]FrameDesc, numBufs),
		dir:       directory.NewTable(directory.SizeFor(numBufs)),
		clockHand: util.FrameID(numBufs - 1),
		logger:    logger,
	}
	for i := range bm.descs {
		bm.descs[i].frameNo = util.FrameID(i)
		bm.descs[i].Clear()
	}
	return bm
}

// ReadPage pins pageNo of f, loading it into a frame on a miss.
func (bm *BufMgr) ReadPage(f file.Filer, pageNo util.PageID) (*PageHandle, error) {
	if err := directory.CheckFiler(f); err != nil {
		return nil, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if frame, ok := bm.dir.Lookup(f, pageNo); ok {
		desc := &bm.descs[frame]
		desc.refbit = true
		desc.pinCnt++
		bm.stats.hits++
		return bm.newHandle(frame), nil
	}

	bm.stats.misses++
	frame, err := bm.allocBuf()
	if err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", f.Filename(), pageNo, err)
	}

	p, err := f.ReadPage(pageNo)
	if err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", f.Filename(), pageNo, err)
	}

	if err := bm.install(frame, f, pageNo, p); err != nil {
		return nil, err
	}
	bm.logger.Debug("page loaded", "frame", frame, "file", f.Filename(), "page", pageNo, "function", "ReadPage", "at", "BufMgr")
	return bm.newHandle(frame), nil
}

// UnpinPage drops one pin on pageNo of f and records whether the caller
// modified it. Releasing a page that is not resident does nothing.
func (bm *BufMgr) UnpinPage(f file.Filer, pageNo util.PageID, dirty bool) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	frame, ok := bm.dir.Lookup(f, pageNo)
	if !ok {
		return nil
	}
	return bm.unpin(frame, dirty)
}

func (bm *BufMgr) unpin(frame util.FrameID, dirty bool) error {
	desc := &bm.descs[frame]
	f, pageNo := desc.file, desc.pageNo
	if desc.pinCnt == 0 {
		return util.NewDatabaseError(util.ErrTypePageNotPinned, "unpin", util.ErrPageNotPinned).
			With("file", f.Filename()).
			With("page", pageNo).
			With("frame", frame)
	}

	desc.pinCnt--
	desc.dirty = desc.dirty || dirty
	return nil
}

// AllocPage creates a new page in f and returns it pinned once.
func (bm *BufMgr) AllocPage(f file.Filer) (util.PageID, *PageHandle, error) {
	if err := directory.CheckFiler(f); err != nil {
		return util.InvalidPageID, nil, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	frame, err := bm.allocBuf()
	if err != nil {
		return util.InvalidPageID, nil, fmt.Errorf("alloc page in %s: %w", f.Filename(), err)
	}

	p, err := f.AllocatePage()
	if err != nil {
		return util.InvalidPageID, nil, fmt.Errorf("alloc page in %s: %w", f.Filename(), err)
	}

	pageNo := p.PageNumber()
	if err := bm.install(frame, f, pageNo, p); err != nil {
		return util.InvalidPageID, nil, err
	}
	bm.logger.Debug("page allocated", "frame", frame, "file", f.Filename(), "page", pageNo, "function", "AllocPage", "at", "BufMgr")
	return pageNo, bm.newHandle(frame), nil
}

func (bm *BufMgr) install(frame util.FrameID, f file.Filer, pageNo util.PageID, p *page.Page) error {
	if err := bm.dir.Insert(f, pageNo, frame); err != nil {
		return util.NewDatabaseError(util.ErrTypeBadBuffer, "register page", err).
			With("frame", frame)
	}
	bm.pool[frame] = *p
	bm.descs[frame].Set(f, pageNo)
	return nil
}

// DisposePage drops pageNo from the pool without writing it back and
// deletes it from f. A page that is absent from the pool, the file, or both
// is not an error; a pinned page is.
func (bm *BufMgr) DisposePage(f file.Filer, pageNo util.PageID) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if frame, ok := bm.dir.Lookup(f, pageNo); ok {
		desc := &bm.descs[frame]
		if desc.pinCnt > 0 {
			return util.NewDatabaseError(util.ErrTypePagePinned, "dispose", util.ErrPagePinned).
				With("file", f.Filename()).
				With("page", pageNo).
				With("frame", frame)
		}
		bm.dir.Remove(f, pageNo)
		desc.Clear()
	}

	if err := f.DeletePage(pageNo); err != nil && !errors.Is(err, util.ErrPageNotFound) {
		return fmt.Errorf("dispose %s page %d: %w", f.Filename(), pageNo, err)
	}
	return nil
}

// FlushFile writes back every dirty page of f and drops all of f's pages
// from the pool. Nothing is flushed if any page of f is pinned.
func (bm *BufMgr) FlushFile(f file.Filer) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.flushFile(f)
}

func (bm *BufMgr) flushFile(f file.Filer) error {
	for i := range bm.descs {
		desc := &bm.descs[i]
		if desc.file != f {
			continue
		}
		if !desc.valid {
			return util.NewDatabaseError(util.ErrTypeBadBuffer, "frame owned by file but not valid", util.ErrBadBuffer).
				With("frame", desc.frameNo).
				With("dirty", desc.dirty).
				With("valid", desc.valid).
				With("refbit", desc.refbit)
		}
		if desc.pinCnt > 0 {
			return util.NewDatabaseError(util.ErrTypePagePinned, "flush file", util.ErrPagePinned).
				With("file", f.Filename()).
				With("page", desc.pageNo).
				With("frame", desc.frameNo)
		}
	}

	for i := range bm.descs {
		desc := &bm.descs[i]
		if desc.file != f {
			continue
		}
		if desc.dirty {
			if err := bm.writeBack(desc.frameNo); err != nil {
				return err
			}
		}
		bm.dir.Remove(f, desc.pageNo)
		desc.Clear()
	}
	return nil
}

// Close flushes every file that still has pages in the pool. Files that
// cannot be flushed are reported together; the pool must not be used after.
func (bm *BufMgr) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	var (
		err  error
		seen []file.Filer
	)
	for i := range bm.descs {
		desc := &bm.descs[i]
		if !desc.valid || slices.Contains(seen, desc.file) {
			continue
		}
		f := desc.file
		seen = append(seen, f)
		if e := bm.flushFile(f); e != nil {
			bm.logger.Error("flush on close failed", "file", f.Filename(), "error", e.Error(), "function", "Close", "at", "BufMgr")
			err = errors.Join(err, e)
		}
	}
	return err
}
