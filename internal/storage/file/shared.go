package file

import (
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	utils "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Filer is the page store a buffer pool caches. Implementations compare by
// identity with ==, so the dynamic type must be comparable; use a pointer.
// The same Filer value always names the same underlying file.
type Filer interface {
	ReadPage(pageId utils.PageID) (*page.Page, error)
	WritePage(p *page.Page) error
	AllocatePage() (*page.Page, error)
	DeletePage(pageId utils.PageID) error
	Filename() string
}

// store is the raw block device underneath a FileManager.
type store interface {
	readAt(buf []byte, off int64) error
	writeAt(buf []byte, off int64) error
	size() int64
	sync() error
	close() error
}
