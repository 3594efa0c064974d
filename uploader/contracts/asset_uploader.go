package contracts

import (
	"context"
	"errors"
)

// ErrUploaderUnavailable marks an upload that could not start because the
// uploader itself could not be built, for example without credentials.
var ErrUploaderUnavailable = errors.New("uploader unavailable")

// UploadRequest describes one local file to publish under a logical identifier.
type UploadRequest struct {
	LocalPath    string
	PublicID     string
	Overwrite    bool
	ResourceType string
}

// IAssetUploader publishes a local file to a remote media host and returns
// its publicly reachable URL.
type IAssetUploader interface {
	Upload(ctx context.Context, request UploadRequest) (string, error)
}
