// Package upload pushes user images to Cloudinary.
package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	folder = "usuarios"

	// Profile pictures and post photos are normalized server-side so
	// clients always receive a 300x300 face-centered crop URL.
	transformation = "c_fill,g_face,h_300,w_300"
)

// Cloudinary uploads images and returns their delivery URLs.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// New creates a Cloudinary uploader from account credentials.
func New(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("upload: init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// UploadImage stores data under publicID and returns the HTTPS delivery URL.
func (c *Cloudinary) UploadImage(ctx context.Context, data []byte, publicID string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		Transformation: transformation,
	})
	if err != nil {
		return "", fmt.Errorf("upload: cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload: cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
