package repository

import "io"

// IBlobStore persists downloaded video files on local disk.
type IBlobStore interface {
	Put(path string, data []byte) error
	Exists(path string) bool
	Open(path string) (io.ReadSeekCloser, int64, error)
	Delete(path string) error
}
