package file

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// metaPageID is where a file keeps its allocation state.
const metaPageID util.PageID = 0

// fileMeta is stored length-prefixed in the payload of page 0.
type fileMeta struct {
	Next util.PageID   `msgpack:"next"`
	Free []util.PageID `msgpack:"free"`
}

func newFileMeta() fileMeta {
	return fileMeta{Next: metaPageID + 1}
}

func (m *fileMeta) allocated(id util.PageID) bool {
	return id != metaPageID && id < m.Next && !slices.Contains(m.Free, id)
}

func (m *fileMeta) live() int {
	return int(m.Next) - 1 - len(m.Free)
}

func (m *fileMeta) encode(p *page.Page) error {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode file meta: %w", err)
	}
	if len(b)+4 > len(p.Data) {
		return fmt.Errorf("%d free pages: %w", len(m.Free), util.ErrMetaOverflow)
	}

	p.Reset()
	p.Header.PageID = metaPageID
	binary.LittleEndian.PutUint32(p.Data[0:4], uint32(len(b)))
	copy(p.Data[4:], b)
	return nil
}

func decodeFileMeta(p *page.Page) (fileMeta, error) {
	var m fileMeta
	if p.PageNumber() != metaPageID {
		return m, fmt.Errorf("meta page carries id %d: %w", p.PageNumber(), util.ErrInvalidPageId)
	}

	n := binary.LittleEndian.Uint32(p.Data[0:4])
	if int(n)+4 > len(p.Data) {
		return m, fmt.Errorf("meta length %d: %w", n, util.ErrMetaOverflow)
	}
	if err := msgpack.Unmarshal(p.Data[4:4+n], &m); err != nil {
		return m, fmt.Errorf("decode file meta: %w", err)
	}
	if m.Next <= metaPageID {
		m.Next = metaPageID + 1
	}
	return m, nil
}
