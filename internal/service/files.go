package service

import "context"

// FileStore keeps uploaded course material.
type FileStore interface {
	// SaveImage stores a course image under a generated name that keeps the
	// extension of originalName, and returns the stored name.
	SaveImage(ctx context.Context, originalName string, data []byte) (string, error)

	// DeleteImage removes a stored image. Missing files are not an error.
	DeleteImage(ctx context.Context, name string) error

	// PublishVideo moves a video from the pending area to the public area.
	PublishVideo(ctx context.Context, name string) error

	// UnpublishVideo moves a video back from the public area to the pending area.
	UnpublishVideo(ctx context.Context, name string) error

	// DeleteVideo removes a video from both areas. Missing files are not an error.
	DeleteVideo(ctx context.Context, name string) error
}
