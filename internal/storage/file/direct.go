package file

import (
	"fmt"
	"os"

	"github.com/ncw/directio"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// directStore bypasses the kernel page cache. Every transfer goes through one
// aligned block, so callers may pass any page-sized slice.
type directStore struct {
	file  *os.File
	block []byte
	fsize int64
}

func openDirectStore(path string) (*directStore, error) {
	if util.PageSize%directio.BlockSize != 0 {
		return nil, fmt.Errorf("page size %d not a multiple of direct io block %d: %w", util.PageSize, directio.BlockSize, util.ErrInvalidPageSize)
	}

	f, err := directio.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open file in direct io mode: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return &directStore{
		file:  f,
		block: directio.AlignedBlock(util.PageSize),
		fsize: st.Size(),
	}, nil
}

func (s *directStore) readAt(buf []byte, off int64) error {
	if len(buf) != util.PageSize {
		return util.ErrInvalidPageSize
	}
	if off < 0 || off+int64(len(buf)) > s.fsize {
		return util.ErrPageOutOfBounds
	}

	n, err := s.file.ReadAt(s.block, off)
	if err != nil {
		return fmt.Errorf("read at %d: %w", off, err)
	}
	if n != len(s.block) {
		return fmt.Errorf("incomplete read at %d: %d bytes", off, n)
	}
	copy(buf, s.block)
	return nil
}

func (s *directStore) writeAt(buf []byte, off int64) error {
	if len(buf) != util.PageSize {
		return util.ErrInvalidPageSize
	}

	copy(s.block, buf)
	n, err := s.file.WriteAt(s.block, off)
	if err != nil {
		return fmt.Errorf("write at %d: %w", off, err)
	}
	if n != len(s.block) {
		return fmt.Errorf("incomplete write at %d: %d bytes", off, n)
	}
	s.fsize = max(s.fsize, off+int64(n))
	return nil
}

func (s *directStore) size() int64 {
	return s.fsize
}

func (s *directStore) sync() error {
	return s.file.Sync()
}

func (s *directStore) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
