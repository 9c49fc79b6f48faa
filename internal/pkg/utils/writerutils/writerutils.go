package writerutils

import (
	"errors"
	"io"
	"os"
)

// SafeFile wraps an *os.File and syncs it to disk on Close. Downloaded
// artifacts go through this writer so a crash right after a download cannot
// leave a file that exists in the directory listing but has unflushed content.
type SafeFile struct {
	f *os.File
}

// NewSafeFileWriter wraps f in a writer that flushes on Close.
func NewSafeFileWriter(f *os.File) io.WriteCloser {
	return &SafeFile{f: f}
}

func (s *SafeFile) Write(p []byte) (n int, err error) {
	return s.f.Write(p)
}

func (s *SafeFile) Close() error {
	return errors.Join(
		s.f.Sync(),
		s.f.Close(),
	)
}
