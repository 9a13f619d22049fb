package buffer

import (
	"fmt"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func (bm *BufMgr) advanceClock() {
	bm.clockHand = (bm.clockHand + 1) % util.FrameID(bm.numBufs)
}

// allocBuf sweeps the clock until it finds an empty frame or an unpinned
// frame whose reference bit is already clear, evicting the latter.
//
// pinned counts consecutive pinned frames; any unpinned frame resets it, so
// reaching numBufs means a whole revolution saw nothing but pins. The sweep
// therefore ends within two revolutions.
func (bm *BufMgr) allocBuf() (util.FrameID, error) {
	pinned := 0
	for pinned < bm.numBufs {
		bm.advanceClock()
		desc := &bm.descs[bm.clockHand]

		if !desc.valid {
			return bm.clockHand, nil
		}

		if desc.pinCnt > 0 {
			desc.refbit = false
			pinned++
			continue
		}
		pinned = 0

		if desc.refbit {
			desc.refbit = false
			continue
		}

		if err := bm.evict(bm.clockHand); err != nil {
			return -1, err
		}
		return bm.clockHand, nil
	}

	bm.logger.Warn("no evictable frame", "frames", bm.numBufs, "function", "allocBuf", "at", "BufMgr")
	return -1, util.NewDatabaseError(util.ErrTypeBufferExceeded,
		fmt.Sprintf("all %d frames pinned", bm.numBufs), util.ErrBufferExceeded).
		With("frames", bm.numBufs)
}

// evict drops the page in frame, writing it back first when dirty. On a
// failed write the frame keeps its page.
func (bm *BufMgr) evict(frame util.FrameID) error {
	desc := &bm.descs[frame]

	if desc.dirty {
		if err := bm.writeBack(frame); err != nil {
			bm.logger.Error("write back failed", "frame", frame, "file", desc.file.Filename(), "page", desc.pageNo, "error", err.Error(), "function", "evict", "at", "BufMgr")
			return err
		}
	}

	bm.logger.Debug("evicting page", "frame", frame, "file", desc.file.Filename(), "page", desc.pageNo, "function", "evict", "at", "BufMgr")
	bm.dir.Remove(desc.file, desc.pageNo)
	desc.Clear()
	bm.stats.evictions++
	return nil
}

func (bm *BufMgr) writeBack(frame util.FrameID) error {
	desc := &bm.descs[frame]
	if err := desc.file.WritePage(&bm.pool[frame]); err != nil {
		return util.NewDatabaseError(util.ErrTypeIOError, "write back", err).
			With("frame", frame).
			With("file", desc.file.Filename()).
			With("page", desc.pageNo)
	}
	desc.dirty = false
	bm.stats.writeBacks++
	return nil
}
