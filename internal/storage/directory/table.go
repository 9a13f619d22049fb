// Package directory maps a resident (file, page number) pair to the buffer
// frame holding it.
package directory

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

type entry struct {
	file   file.Filer
	pageNo util.PageID
	frame  util.FrameID
	next   *entry
}

// Table is a chained hash table with a bucket count fixed at construction.
type Table struct {
	buckets []*entry
	count   int
}

func NewTable(size int) *Table {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	return &Table{buckets: make([]*entry, size)}
}

// SizeFor returns the bucket count for a pool of numBufs frames.
func SizeFor(numBufs int) int {
	return int(float64(numBufs)*1.2) + 1
}

func (t *Table) hash(f file.Filer, pageNo util.PageID) int {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(pageNo)^xxhash.Sum64String(f.Filename()))
	return int(xxhash.Sum64(key[:]) % uint64(len(t.buckets)))
}

// Lookup reports the frame holding pageNo of f, if any.
func (t *Table) Lookup(f file.Filer, pageNo util.PageID) (util.FrameID, bool) {
	for e := t.buckets[t.hash(f, pageNo)]; e != nil; e = e.next {
		if e.file == f && e.pageNo == pageNo {
			return e.frame, true
		}
	}
	return -1, false
}

// CheckFiler reports whether f can key the table. Entries are matched with
// ==, which panics on an incomparable dynamic type; as long as no entry holds
// one, Lookup and Remove are safe for any f.
func CheckFiler(f file.Filer) error {
	if f == nil {
		return util.ErrFileManagerNil
	}
	if !reflect.TypeOf(f).Comparable() {
		return fmt.Errorf("%T: %w", f, util.ErrFilerNotComparable)
	}
	return nil
}

func (t *Table) Insert(f file.Filer, pageNo util.PageID, frame util.FrameID) error {
	if err := CheckFiler(f); err != nil {
		return err
	}

	idx := t.hash(f, pageNo)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.file == f && e.pageNo == pageNo {
			return fmt.Errorf("insert %s page %d (frame %d, held by %d): %w", f.Filename(), pageNo, frame, e.frame, util.ErrHashEntryExists)
		}
	}

	t.buckets[idx] = &entry{file: f, pageNo: pageNo, frame: frame, next: t.buckets[idx]}
	t.count++
	return nil
}

// Remove deletes the entry and reports whether one was present.
func (t *Table) Remove(f file.Filer, pageNo util.PageID) bool {
	idx := t.hash(f, pageNo)
	for link := &t.buckets[idx]; *link != nil; link = &(*link).next {
		if e := *link; e.file == f && e.pageNo == pageNo {
			*link = e.next
			t.count--
			return true
		}
	}
	return false
}

func (t *Table) Len() int {
	return t.count
}

func (t *Table) Buckets() int {
	return len(t.buckets)
}
