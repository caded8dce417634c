package file_store

import "io"

// Shared Func type for file stores
type CustomizeFileNameFuncType func(string) string
type CustomizeUploadedUrlType func(string) string

// PhotoFileStore persists uploaded photo blobs. The api server only ever
// talks to this interface, so tests can swap in the in-memory fake.
type PhotoFileStore interface {
	Store(fileName string, body io.Reader) (key string, err error)
	Delete(key string) error
	GetUrlFromKey(key string) string
	CleanUp()
}
