package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	// DefaultMediaFolder is where issue images land unless overridden.
	DefaultMediaFolder = "citysense/issues"
	// defaultTransformation bounds uploads to 1200x800 with automatic
	// quality and format selection.
	defaultTransformation = "q_auto:good,f_auto,w_1200,h_800,c_limit"
	defaultTags           = "citysense,issue-report"
)

// UploadOptions normalizes caller-supplied upload parameters.
type UploadOptions struct {
	Folder         string   `json:"folder"`
	PublicID       string   `json:"publicId"`
	Tags           []string `json:"tags"`
	Transformation string   `json:"transformation"`
}

func (o *UploadOptions) applyDefaults() {
	if o.Folder == "" {
		o.Folder = DefaultMediaFolder
	}
	if len(o.Tags) == 0 {
		o.Tags = []string{"citysense", "issue-report"}
	}
	if o.Transformation == "" {
		o.Transformation = defaultTransformation
	}
}

// MediaService proxies upload/delete/metadata/list operations to the
// media host.
type MediaService struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiKey    string
	apiSecret string
}

// NewMediaService configures the Cloudinary client.
func NewMediaService(cloudName, apiKey, apiSecret string) (*MediaService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true
	return &MediaService{
		cld:       cld,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}, nil
}

// Upload performs a server-side upload with normalized options.
func (s *MediaService) Upload(ctx context.Context, file string, opts UploadOptions) (*uploader.UploadResult, error) {
	opts.applyDefaults()
	return s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         opts.Folder,
		PublicID:       opts.PublicID,
		Tags:           api.CldAPIArray(opts.Tags),
		Transformation: opts.Transformation,
	})
}

// Delete removes a single image by public id.
func (s *MediaService) Delete(ctx context.Context, publicID string) (*uploader.DestroyResult, error) {
	return s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
}

// Metadata fetches image details by public id.
func (s *MediaService) Metadata(ctx context.Context, publicID string) (*admin.AssetResult, error) {
	return s.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: publicID})
}

// BulkDelete removes a set of images; the result carries per-id
// disposition (deleted / partially processed / not found).
func (s *MediaService) BulkDelete(ctx context.Context, publicIDs []string) (*admin.DeleteAssetsResult, error) {
	return s.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		PublicIDs: api.CldAPIArray(publicIDs),
	})
}

// FolderContents lists a folder with cursor-based pagination.
func (s *MediaService) FolderContents(ctx context.Context, folder string, maxResults int, nextCursor string) (*admin.AssetsResult, error) {
	if folder == "" {
		folder = "citysense"
	}
	if maxResults <= 0 {
		maxResults = 100
	}
	return s.cld.Admin.Assets(ctx, admin.AssetsParams{
		DeliveryType: "upload",
		Prefix:       folder,
		MaxResults:   maxResults,
		NextCursor:   nextCursor,
	})
}

// SignedUploadParams produces time-stamped, signed parameters so the
// client can upload directly without seeing the API secret.
func (s *MediaService) SignedUploadParams(opts UploadOptions) (map[string]string, error) {
	opts.applyDefaults()

	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("folder", opts.Folder)
	params.Set("tags", defaultTags)
	params.Set("transformation", opts.Transformation)

	signature, err := api.SignParameters(params, s.apiSecret)
	if err != nil {
		return nil, err
	}

	signed := map[string]string{
		"signature":  signature,
		"api_key":    s.apiKey,
		"cloud_name": s.cloudName,
	}
	for key := range params {
		signed[key] = params.Get(key)
	}
	return signed, nil
}
