package main

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

const defaultMaxLogBytes = 6 * 1024 * 1024

// logFileWriter appends to a file and, once it grows past maxBytes, keeps
// only the newest keepBytes of it.
type logFileWriter struct {
	file      *os.File
	maxBytes  int64
	keepBytes int64
	mu        sync.Mutex
}

func newLogFileWriter(path string, maxBytes int64) (*logFileWriter, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxLogBytes
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &logFileWriter{file: file, maxBytes: maxBytes, keepBytes: maxBytes * 5 / 6}
	if err := w.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.truncateIfNeeded()
}

func (w *logFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.maxBytes {
		return nil
	}

	buf := make([]byte, w.keepBytes)
	n, err := w.file.ReadAt(buf, size-w.keepBytes)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes always land at the end, so the offset needs no reset.
	_, err = w.file.Write(buf)
	return err
}
