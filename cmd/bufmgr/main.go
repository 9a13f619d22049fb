package main

import (
	"bytes"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func main() {
	opts := util.DefaultOptions()
	flag.StringVar(&opts.Path, "path", opts.Path, "page file")
	flag.IntVar(&opts.BufferPoolSize, "frames", 3, "frames in the buffer pool")
	flag.IntVar(&opts.InitialPages, "initial-pages", opts.InitialPages, "pages mapped when the file is created")
	flag.BoolVar(&opts.DirectIO, "direct", opts.DirectIO, "bypass the OS page cache")
	flag.BoolVar(&opts.SyncWrites, "sync", opts.SyncWrites, "sync after every page write")
	pages := flag.Int("pages", 10, "pages to allocate")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		opts.LogLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.LogLevel}))

	if err := run(opts, *pages, logger); err != nil {
		logger.Error("bufmgr failed", "error", err.Error(), "function", "main", "at", "main")
		os.Exit(1)
	}
}

func run(opts util.Options, pages int, logger *slog.Logger) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	fm, err := file.Open(opts)
	if err != nil {
		return err
	}
	defer fm.Close()

	bm := buffer.NewBufMgr(opts.BufferPoolSize, logger)

	ids := make([]util.PageID, 0, pages)
	for i := 0; i < pages; i++ {
		pageNo, h, err := bm.AllocPage(fm)
		if err != nil {
			return err
		}
		copy(h.Page().Data[:], payload(pageNo))
		if err := h.Release(true); err != nil {
			return err
		}
		ids = append(ids, pageNo)
	}
	logger.Info("pages written", "count", len(ids), "file", fm.Filename(), "size", humanize.IBytes(uint64(fm.Size())))

	for _, id := range ids {
		h, err := bm.ReadPage(fm, id)
		if err != nil {
			return err
		}
		ok := bytes.HasPrefix(h.Page().Data[:], payload(id))
		if err := h.Release(false); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("page %d: content mismatch", id)
		}
	}
	logger.Info("pages verified", "count", len(ids))

	if len(ids) > 0 {
		if err := bm.DisposePage(fm, ids[0]); err != nil {
			return err
		}
	}

	bm.PrintSelf()
	fmt.Println(bm.Stats())

	return bm.Close()
}

func payload(id util.PageID) []byte {
	return []byte(fmt.Sprintf("bufmgr page %d", id))
}
