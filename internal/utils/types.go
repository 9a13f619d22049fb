package util

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// PageID represents a unique page identifier
type PageID uint64

// InvalidPageID is never handed out by a file; page 0 holds file metadata.
const InvalidPageID PageID = 0

// FrameID is the index of a slot in the buffer pool
type FrameID int

// PageSize represents the standard page size (4KB)
const PageSize = 4096

// MAX_MAP_SIZE caps how far a memory-mapped file may grow (1GB)
const MAX_MAP_SIZE = 1 << 30

// ErrorType represents different types of database errors
type ErrorType int

const (
	ErrTypeNotFound ErrorType = iota
	ErrTypeIOError
	ErrTypeCorruption
	ErrTypeBufferExceeded
	ErrTypePageNotPinned
	ErrTypePagePinned
	ErrTypeBadBuffer
)

// DatabaseError represents a database-specific error
type DatabaseError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DatabaseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "BufMgr Error [%d]: %s", e.Type, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// With attaches a diagnostic key/value and returns the same error.
func (e *DatabaseError) With(key string, value interface{}) *DatabaseError {
	e.Context[key] = value
	return e
}

// NewDatabaseError creates a new database error
func NewDatabaseError(errType ErrorType, message string, cause error) *DatabaseError {
	return &DatabaseError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Options represents buffer manager configuration options
type Options struct {
	Path           string
	PageSize       int
	BufferPoolSize int
	InitialPages   int
	DirectIO       bool
	SyncWrites     bool
	LogLevel       slog.Level
}

// DefaultOptions returns default options
func DefaultOptions() Options {
	return Options{
		Path:           "bufmgr.db",
		PageSize:       PageSize,
		BufferPoolSize: 1000, // 4MB default buffer pool
		InitialPages:   16,
		DirectIO:       false,
		SyncWrites:     false,
		LogLevel:       slog.LevelInfo,
	}
}

// Validate reports the first option that cannot be used to build a pool.
func (o Options) Validate() error {
	switch {
	case o.Path == "":
		return fmt.Errorf("options: empty path")
	case o.PageSize != PageSize:
		return fmt.Errorf("options: page size %d: %w", o.PageSize, ErrInvalidPageSize)
	case o.BufferPoolSize <= 0:
		return fmt.Errorf("options: pool size %d: %w", o.BufferPoolSize, ErrInvalidPoolSize)
	case o.InitialPages <= 0:
		return fmt.Errorf("options: initial pages %d: %w", o.InitialPages, ErrInvalidInitialPages)
	}
	return nil
}
