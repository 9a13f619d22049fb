package page

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

const (
	HEADER_SIZE = 16 // Size of PageHeader struct: PageID(8) + Checksum(4) + Flags(2) + padding(2)
)

// Page is block that read/write from disk
type Page struct {
	Header PageHeader
	Data   [util.PageSize - HEADER_SIZE]byte
}

type PageHeader struct {
	PageID   util.PageID // 8 bytes
	Checksum uint32      // 4 bytes
	Flags    uint16      // 2 bytes
	_        uint16      //2 bytes (padding)
}

// PageNumber returns the number the owning file assigned to this page.
func (p *Page) PageNumber() util.PageID {
	return p.Header.PageID
}

// Reset zeroes the page in place.
func (p *Page) Reset() {
	*p = Page{}
}

// New returns page id holding data; data longer than the payload is cut off.
func New(id util.PageID, data []byte) *Page {
	p := &Page{Header: PageHeader{PageID: id}}
	copy(p.Data[:], data)
	return p
}

// Serialize packs the page into a byte slice for writing
func (p *Page) Serialize() []byte {
	buf := make([]byte, util.PageSize)
	p.encode(buf)
	return buf
}

// SerializeTo packs the page into buf, which must be exactly one page long.
// The checksum stored in the header is refreshed.
func (p *Page) SerializeTo(buf []byte) error {
	if len(buf) != util.PageSize {
		return fmt.Errorf("serialize page %d into %d bytes: %w", p.Header.PageID, len(buf), util.ErrInvalidPageSize)
	}
	p.encode(buf)
	return nil
}

func (p *Page) encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	binary.LittleEndian.PutUint16(buf[12:14], p.Header.Flags)
	buf[14], buf[15] = 0, 0
	copy(buf[HEADER_SIZE:], p.Data[:])

	p.Header.Checksum = checksum(buf)
	binary.LittleEndian.PutUint32(buf[8:12], p.Header.Checksum)
}

// Deserialize unpacks from bytes, validates checksum
func Deserialize(data []byte) (*Page, error) {
	p := &Page{}
	if err := DeserializeInto(p, data); err != nil {
		return nil, err
	}
	return p, nil
}

// DeserializeInto is Deserialize without the allocation.
func DeserializeInto(p *Page, data []byte) error {
	if len(data) != util.PageSize {
		return util.ErrInvalidPageSize
	}

	p.Header.PageID = util.PageID(binary.LittleEndian.Uint64(data[0:8]))
	p.Header.Checksum = binary.LittleEndian.Uint32(data[8:12])
	p.Header.Flags = binary.LittleEndian.Uint16(data[12:14])
	copy(p.Data[:], data[HEADER_SIZE:])

	if sum := checksum(data); sum != p.Header.Checksum {
		return fmt.Errorf("page %d: stored %#08x computed %#08x: %w", p.Header.PageID, p.Header.Checksum, sum, util.ErrChecksumMismatch)
	}
	return nil
}

// checksum covers the page id, flags and payload; the checksum field itself is skipped.
func checksum(buf []byte) uint32 {
	d := xxhash.New()
	_, _ = d.Write(buf[0:8])
	_, _ = d.Write(buf[12:])
	return uint32(d.Sum64())
}
