package uploadsvc

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hoshiyaar/paathshala/core"
)

// DummyStore is an in-memory core.FileStore for tests.
type DummyStore struct {
	mu      sync.Mutex
	count   int
	Uploads []core.FileUpload
}

var _ core.FileStore = (*DummyStore)(nil)

func NewDummyStore() *DummyStore { return &DummyStore{} }

func (s *DummyStore) Upload(ctx context.Context, r io.Reader, folder string) (core.FileUpload, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return core.FileUpload{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	up := core.FileUpload{
		URL:      fmt.Sprintf("https://files.local/%s/upload-%d", folder, s.count),
		PublicID: fmt.Sprintf("%s/upload-%d", folder, s.count),
	}
	s.Uploads = append(s.Uploads, up)
	return up, nil
}
