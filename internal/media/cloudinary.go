package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/vasiliy-maslov/user-directory/internal/config"
)

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type Cloudinary struct {
	cld      *cloudinary.Cloudinary
	uploader cloudinaryUploader
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, uploader: &cld.Upload}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, path string) (*UploadResult, error) {
	resp, err := c.uploader.Upload(ctx, path, uploader.UploadParams{})
	if err != nil {
		return nil, fmt.Errorf("cloudinary: upload failed: %w", err)
	}
	// Cloudinary reports API errors in the body with a nil error.
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: upload rejected: %s", resp.Error.Message)
	}
	if resp.PublicID == "" {
		return nil, ErrEmptyPublicID
	}
	return &UploadResult{PublicID: resp.PublicID, URL: resp.SecureURL}, nil
}

func (c *Cloudinary) ImageURL(_ context.Context, publicID string, width, height int) (string, error) {
	if publicID == "" {
		return "", ErrEmptyPublicID
	}
	img, err := c.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary: failed to build image asset: %w", err)
	}
	img.Transformation = fmt.Sprintf("w_%d,h_%d", width, height)

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary: failed to build image url: %w", err)
	}
	return url, nil
}
