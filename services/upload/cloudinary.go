package uploadsvc

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core"
)

// CloudinaryStore stores item images on Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

var _ core.FileStore = (*CloudinaryStore)(nil)

func NewCloudinaryStore(conf *core.Config) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(conf.Cloudinary.CloudName, conf.Cloudinary.ApiKey, conf.Cloudinary.ApiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "initializing cloudinary")
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, folder: conf.Cloudinary.Folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, folder string) (core.FileUpload, error) {
	if folder == "" {
		folder = s.folder
	}
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		return core.FileUpload{}, errors.Wrap(err, "uploading file")
	}
	return core.FileUpload{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
	}, nil
}
