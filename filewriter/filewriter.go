// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package filewriter safely writes files.
package filewriter

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes to a temp file and later atomically renames it.
// If a write error occurs, it is saved internally and future writes become no-ops.
// FileWriter implements io.Writer, so it can be handed to encoders.
type FileWriter struct {
	p    string   // target filename
	f    *os.File // temp file
	werr error    // first error encountered while writing
}

// New returns a new FileWriter that will write to the supplied path.
func New(p string) (*FileWriter, error) {
	f, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".*")
	if err != nil {
		return nil, err
	}
	return &FileWriter{p, f, nil}, nil
}

// Write writes b to the temp file.
// After an error, the same error is returned for all later calls.
func (fw *FileWriter) Write(b []byte) (int, error) {
	if fw.werr != nil {
		return 0, fw.werr
	}
	var n int
	n, fw.werr = fw.f.Write(b)
	return n, fw.werr
}

// Printf writes the supplied formatted data and returns the number of bytes written.
func (fw *FileWriter) Printf(format string, args ...interface{}) int {
	n, _ := fmt.Fprintf(fw, format, args...)
	return n
}

// Close renames the temp file to the path originally supplied to New.
// If a write error occurred earlier, it is returned and the target is left untouched.
func (fw *FileWriter) Close() error {
	defer os.Remove(fw.f.Name()) // no-op on success
	cerr := fw.f.Close()
	if fw.werr != nil {
		return fw.werr
	}
	if cerr != nil {
		return cerr
	}
	return os.Rename(fw.f.Name(), fw.p)
}

// Abort discards everything written so far. The target path is not modified.
func (fw *FileWriter) Abort() {
	fw.f.Close()
	os.Remove(fw.f.Name())
}
