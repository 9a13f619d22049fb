package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// FrameDesc is the bookkeeping for one pool slot.
type FrameDesc struct {
	file    file.Filer
	pageNo  util.PageID
	frameNo util.FrameID
	pinCnt  int32
	dirty   bool
	valid   bool
	refbit  bool
	// gen changes whenever the frame is filled or emptied.
	gen uint64
}

// Set marks the frame as holding pageNo of f, pinned once by the loader.
func (d *FrameDesc) Set(f file.Filer, pageNo util.PageID) {
	d.file = f
	d.pageNo = pageNo
	d.pinCnt = 1
	d.dirty = false
	d.valid = true
	d.refbit = true
	d.gen++
}

// Clear returns the frame to the empty state. frameNo is kept.
func (d *FrameDesc) Clear() {
	d.file = nil
	d.pageNo = util.InvalidPageID
	d.pinCnt = 0
	d.dirty = false
	d.valid = false
	d.refbit = false
	d.gen++
}

func (d *FrameDesc) state() FrameState {
	st := FrameState{
		FrameNo: d.frameNo,
		PageNo:  d.pageNo,
		PinCnt:  d.pinCnt,
		Dirty:   d.dirty,
		Valid:   d.valid,
		RefBit:  d.refbit,
	}
	if d.file != nil {
		st.File = d.file.Filename()
	}
	return st
}

// FrameState is a copy of a descriptor for diagnostics.
type FrameState struct {
	FrameNo util.FrameID
	File    string
	PageNo  util.PageID
	PinCnt  int32
	Dirty   bool
	Valid   bool
	RefBit  bool
}

func (s FrameState) String() string {
	file := s.File
	if file == "" {
		file = "NULL"
	}
	return fmt.Sprintf("file:%s pageNo:%d valid:%t pinCnt:%d dirty:%t refbit:%t",
		file, s.PageNo, s.Valid, s.PinCnt, s.Dirty, s.RefBit)
}
