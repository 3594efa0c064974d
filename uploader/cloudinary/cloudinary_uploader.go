package cloudinary

import (
	"context"
	"errors"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/ryanwalloh/assetkit/uploader/contracts"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond paces uploads when the configuration leaves it unset.
const DefaultRequestsPerSecond = 2.0

// uploadAPI is the part of the Cloudinary SDK the uploader needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryConfig implements IAssetUploader on top of the Cloudinary upload API.
type CloudinaryConfig struct {
	Credentials       Credentials
	RequestsPerSecond float64

	api     uploadAPI
	limiter *rate.Limiter
}

// NewCloudinaryUploader validates the credentials and builds an SDK client.
func NewCloudinaryUploader(config *CloudinaryConfig) (contracts.IAssetUploader, error) {
	if err := config.Credentials.Validate(); err != nil {
		return nil, err
	}

	client, err := cld.NewFromParams(config.Credentials.CloudName, config.Credentials.APIKey, config.Credentials.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return newCloudinaryUploader(config, &client.Upload), nil
}

func newCloudinaryUploader(config *CloudinaryConfig, client uploadAPI) *CloudinaryConfig {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &CloudinaryConfig{
		Credentials:       config.Credentials,
		RequestsPerSecond: rps,
		api:               client,
		limiter:           rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Upload sends one file and returns its secure URL. The public ID is used
// as given, never derived from the file name.
func (c *CloudinaryConfig) Upload(ctx context.Context, request contracts.UploadRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resourceType := request.ResourceType
	if resourceType == "" {
		resourceType = "image"
	}

	result, err := c.api.Upload(ctx, request.LocalPath, uploader.UploadParams{
		PublicID:       request.PublicID,
		Overwrite:      api.Bool(request.Overwrite),
		ResourceType:   resourceType,
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("upload of %s failed: %w", request.LocalPath, err)
	}
	if result == nil {
		return "", errors.New("upload returned no result")
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload of %s rejected: %s", request.LocalPath, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload of %s returned no secure url", request.LocalPath)
	}

	return result.SecureURL, nil
}
