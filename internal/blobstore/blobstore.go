// Package blobstore stores the raw bytes of uploaded files. The analytics
// summary lives in the database; the original upload is kept verbatim so it
// can be re-analyzed later.
package blobstore

import "context"

// Store saves raw upload content under a caller-chosen name and returns a
// location string (a filesystem path or a gs:// URI).
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
