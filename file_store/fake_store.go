package file_store

import (
	"io"
	"io/ioutil"
	"sync"
)

// FakeFileStore keeps blobs in memory, for tests and local development.
type FakeFileStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{blobs: make(map[string][]byte)}
}

func (f *FakeFileStore) Store(fileName string, body io.Reader) (key string, err error) {
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[fileName] = data
	return fileName, nil
}

func (f *FakeFileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, key)
	return nil
}

func (f *FakeFileStore) GetUrlFromKey(key string) string {
	return "fake://" + key
}

func (f *FakeFileStore) CleanUp() {}
