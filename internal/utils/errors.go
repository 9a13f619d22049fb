package util

import "errors"

var (
	ErrInvalidPageId       = errors.New("invalid page id")
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrInvalidInitialPages = errors.New("initial pages must be positive")
	ErrMaxMapSizeExceeded  = errors.New("initial size exceeds maximum mapping size")
	ErrPageOutOfBounds     = errors.New("page out of bounds")
	ErrPageNotFound        = errors.New("page not found")
	ErrFileManagerNil      = errors.New("file manager is nil")
	ErrFileClosed          = errors.New("file is closed")
	ErrMetaOverflow        = errors.New("file metadata does not fit in header page")
	ErrInvalidPoolSize     = errors.New("invalid pool size")
	ErrHashEntryExists     = errors.New("page already present in directory")
	ErrFilerNotComparable  = errors.New("file handle type is not comparable")

	// buffer manager taxonomy
	ErrBufferExceeded = errors.New("buffer pool exhausted: all frames pinned")
	ErrPageNotPinned  = errors.New("page not pinned")
	ErrPagePinned     = errors.New("page still pinned")
	ErrBadBuffer      = errors.New("bad buffer state")
	ErrHandleReleased = errors.New("page handle already released")
)
