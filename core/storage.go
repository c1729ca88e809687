package core

import (
	"context"
	"io"
)

type (
	// FileUpload is the result of storing one binary asset.
	FileUpload struct {
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
		Width    int    `json:"width,omitempty"`
		Height   int    `json:"height,omitempty"`
		Format   string `json:"format,omitempty"`
	}

	// FileStore is any service that can persist a binary asset and hand back
	// a stable URL plus an opaque identifier for later deletion.
	FileStore interface {
		Upload(ctx context.Context, r io.Reader, folder string) (FileUpload, error)
	}
)
