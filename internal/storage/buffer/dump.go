package buffer

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Stats is a point-in-time summary of the pool.
type Stats struct {
	Frames     int
	Valid      int
	Pinned     int
	Dirty      int
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
	PoolBytes  uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("frames=%d (%s) valid=%d pinned=%d dirty=%d hits=%s misses=%s evictions=%s writebacks=%s",
		s.Frames, humanize.IBytes(s.PoolBytes), s.Valid, s.Pinned, s.Dirty,
		humanize.Comma(int64(s.Hits)), humanize.Comma(int64(s.Misses)),
		humanize.Comma(int64(s.Evictions)), humanize.Comma(int64(s.WriteBacks)))
}

func (bm *BufMgr) Stats() Stats {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	s := Stats{
		Frames:     bm.numBufs,
		Hits:       bm.stats.hits,
		Misses:     bm.stats.misses,
		Evictions:  bm.stats.evictions,
		WriteBacks: bm.stats.writeBacks,
		PoolBytes:  uint64(bm.numBufs) * util.PageSize,
	}
	for i := range bm.descs {
		desc := &bm.descs[i]
		if !desc.valid {
			continue
		}
		s.Valid++
		if desc.pinCnt > 0 {
			s.Pinned++
		}
		if desc.dirty {
			s.Dirty++
		}
	}
	return s
}

// Frames returns a copy of every descriptor, in frame order.
func (bm *BufMgr) Frames() []FrameState {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	out := make([]FrameState, len(bm.descs))
	for i := range bm.descs {
		out[i] = bm.descs[i].state()
	}
	return out
}

// Dump writes one line per frame followed by the valid frame count.
func (bm *BufMgr) Dump(w io.Writer) error {
	frames := bm.Frames()

	valid := 0
	for _, st := range frames {
		if _, err := fmt.Fprintf(w, "FrameNo:%d %s\n", st.FrameNo, st); err != nil {
			return err
		}
		if st.Valid {
			valid++
		}
	}
	_, err := fmt.Fprintf(w, "Total Number of Valid Frames:%d\n", valid)
	return err
}

func (bm *BufMgr) PrintSelf() {
	bm.printTo(os.Stdout)
}

func (bm *BufMgr) printTo(w io.Writer) {
	if err := bm.Dump(w); err != nil {
		bm.logger.Error("dump failed", "error", err.Error(), "function", "PrintSelf", "at", "BufMgr")
	}
}
