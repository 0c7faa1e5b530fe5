// Package media relays uploaded assets to Cloudinary and returns durable URLs.
package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	imageFolder = "blog_posts"
	pdfFolder   = "blog_pdfs"
)

type Upload struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Uploader interface {
	UploadImage(ctx context.Context, path string) (*Upload, error)
	UploadPDF(ctx context.Context, path string) (*Upload, error)
}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) UploadImage(ctx context.Context, path string) (*Upload, error) {
	return c.upload(ctx, path, uploader.UploadParams{Folder: imageFolder})
}

// UploadPDF uses the raw resource type; Cloudinary serves PDFs as
// opaque files rather than transformable images.
func (c *Cloudinary) UploadPDF(ctx context.Context, path string) (*Upload, error) {
	return c.upload(ctx, path, uploader.UploadParams{Folder: pdfFolder, ResourceType: "raw"})
}

func (c *Cloudinary) upload(ctx context.Context, path string, params uploader.UploadParams) (*Upload, error) {
	resp, err := c.cld.Upload.Upload(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return &Upload{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}
