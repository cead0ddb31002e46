package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// BlobStore stores shipment attachments in Cloudinary and hands back the
// public URL.
type BlobStore struct {
	cld    *cld.Cloudinary
	folder string
}

// NewBlobStore connects using a cloudinary:// URL as produced by the
// Cloudinary console.
func NewBlobStore(cloudinaryURL string, folder string) (*BlobStore, error) {
	cloud, err := cld.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = "shipments"
	}
	return &BlobStore{cld: cloud, folder: folder}, nil
}

func (u *BlobStore) Put(ctx context.Context, filename string, mimeType string, b []byte) (string, error) {
	reader := bytes.NewReader(b)

	resourceType := "image"
	if !strings.HasPrefix(mimeType, "image/") {
		resourceType = "raw"
	}

	res, err := u.cld.Upload.Upload(
		ctx,
		reader,
		uploader.UploadParams{
			Folder:       u.folder,
			PublicID:     fmt.Sprintf("%s_%s", uuid.NewString(), filename),
			ResourceType: resourceType,
		},
	)
	if err != nil {
		return "", err
	}

	return res.SecureURL, nil
}
