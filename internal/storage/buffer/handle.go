package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// PageHandle is one pin on a resident page. The page content it exposes
// stays in place until Release is called; after that the handle is inert.
// A handle whose frame has since been emptied or refilled is inert as well.
type PageHandle struct {
	// active is false once Release has been called.
	active bool
	bm     *BufMgr
	file   file.Filer
	pageNo util.PageID
	frame  util.FrameID
	gen    uint64
}

func (bm *BufMgr) newHandle(frame util.FrameID) *PageHandle {
	desc := &bm.descs[frame]
	return &PageHandle{
		active: true,
		bm:     bm,
		file:   desc.file,
		pageNo: desc.pageNo,
		frame:  frame,
		gen:    desc.gen,
	}
}

// current reports whether the frame still holds the page this handle pinned.
// Callers hold bm.mu.
func (h *PageHandle) current() bool {
	desc := &h.bm.descs[h.frame]
	return desc.valid && desc.gen == h.gen && desc.file == h.file && desc.pageNo == h.pageNo
}

// Page returns the in-pool page, or nil once the handle is released or the
// page no longer holds a pin in its frame.
func (h *PageHandle) Page() *page.Page {
	if h == nil || !h.active {
		return nil
	}
	h.bm.mu.Lock()
	defer h.bm.mu.Unlock()

	if !h.current() || h.bm.descs[h.frame].pinCnt == 0 {
		return nil
	}
	return &h.bm.pool[h.frame]
}

func (h *PageHandle) PageNumber() util.PageID {
	return h.pageNo
}

func (h *PageHandle) FrameNo() util.FrameID {
	return h.frame
}

// Release gives the pin back. dirty reports whether the page was modified.
func (h *PageHandle) Release(dirty bool) error {
	if h == nil || !h.active {
		return util.ErrHandleReleased
	}
	h.active = false

	h.bm.mu.Lock()
	defer h.bm.mu.Unlock()

	if !h.current() {
		return fmt.Errorf("release %s page %d from frame %d: frame reused: %w",
			h.file.Filename(), h.pageNo, h.frame, util.ErrHandleReleased)
	}
	return h.bm.unpin(h.frame, dirty)
}
