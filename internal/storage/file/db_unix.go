//go:build unix

package file

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// mmapStore maps the whole file into memory; reads and writes are copies.
type mmapStore struct {
	file  *os.File
	data  []byte
	fsize int64
}

func openMmapStore(path string, initialSize int64) (*mmapStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	s := &mmapStore{file: f}
	if err := s.mmap(max(st.Size(), initialSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("map file fail: %w", err)
	}
	return s, nil
}

func (s *mmapStore) mmap(size int64) error {
	if s.file == nil {
		return util.ErrFileManagerNil
	}
	if size <= 0 {
		return util.ErrInvalidInitialPages
	}
	if size > util.MAX_MAP_SIZE {
		return util.ErrMaxMapSizeExceeded
	}

	if err := s.file.Truncate(size); err != nil {
		return fmt.Errorf("truncate to %d: %w", size, err)
	}

	data, err := unix.Mmap(int(s.file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	s.data = data
	s.fsize = size
	return nil
}

func (s *mmapStore) munmap() error {
	if s.data == nil {
		return nil
	}

	err := unix.Munmap(s.data)
	s.data = nil
	s.fsize = 0
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

func (s *mmapStore) readAt(buf []byte, off int64) error {
	if off < 0 || off+int64(len(buf)) > s.fsize {
		return util.ErrPageOutOfBounds
	}
	copy(buf, s.data[off:])
	return nil
}

// writeAt remaps at double the size when the write lands past the end.
func (s *mmapStore) writeAt(buf []byte, off int64) error {
	end := off + int64(len(buf))
	if end > s.fsize {
		newSize := max(s.fsize*2, end)
		if newSize > util.MAX_MAP_SIZE {
			return util.ErrMaxMapSizeExceeded
		}

		if err := s.munmap(); err != nil {
			return fmt.Errorf("[writeAt] unmap file fail: %w", err)
		}

		if err := s.mmap(newSize); err != nil {
			return fmt.Errorf("[writeAt] map file fail: %w", err)
		}
	}

	copy(s.data[off:end], buf)
	return nil
}

func (s *mmapStore) size() int64 {
	return s.fsize
}

func (s *mmapStore) sync() error {
	if s.data == nil {
		return nil
	}
	return unix.Msync(s.data, unix.MS_SYNC)
}

func (s *mmapStore) close() error {
	var err error
	if e := s.sync(); e != nil {
		err = errors.Join(err, fmt.Errorf("msync: %w", e))
	}
	if e := s.munmap(); e != nil {
		err = errors.Join(err, fmt.Errorf("[close] %w", e))
	}

	if s.file != nil {
		if e := s.file.Sync(); e != nil {
			err = errors.Join(err, fmt.Errorf("sync file: %w", e))
		}
		if e := s.file.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("close file: %w", e))
		}
		s.file = nil
	}
	return err
}
