// Package media uploads profile images to an external host and builds
// display URLs for them.
package media

import (
	"context"
	"errors"
)

// DisplaySize is the square edge, in pixels, of profile image URLs.
const DisplaySize = 200

var ErrEmptyPublicID = errors.New("public id is empty")

type UploadResult struct {
	PublicID string
	URL      string
}

type Service interface {
	Upload(ctx context.Context, path string) (*UploadResult, error)
	ImageURL(ctx context.Context, publicID string, width, height int) (string, error)
}
