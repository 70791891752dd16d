package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/ctmes/ProfTwo/internal/config"
)

// Client wraps the storage backend with the two buckets the service uses:
// uploads (raw slide decks and transcripts, pre-pipeline) and assets
// (published slide images and narration audio, post-pipeline).
type Client struct {
	backend       Provider
	endpoint      string
	bucketUploads string
	bucketAssets  string
}

func New(cfg *config.Config) *Client {
	var backend Provider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalRoot)
	} else {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = NewS3Provider(sess)
	}

	return &Client{
		backend:       backend,
		endpoint:      strings.TrimRight(cfg.Storage.Endpoint, "/"),
		bucketUploads: cfg.Storage.BucketUploads,
		bucketAssets:  cfg.Storage.BucketAssets,
	}
}

// --- Upload Methods (pre-pipeline) ---

func (c *Client) PutUpload(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketUploads, key, body, contentType, "")
}

func (c *Client) GetUpload(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketUploads, key)
}

// ReadUploadText slurps a small text upload (the transcript file).
func (c *Client) ReadUploadText(key string) (string, error) {
	obj, err := c.GetUpload(key)
	if err != nil {
		return "", err
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) DeleteUpload(key string) error {
	return c.backend.Delete(c.bucketUploads, key)
}

func (c *Client) UploadExists(key string) (bool, error) {
	return c.backend.Exists(c.bucketUploads, key)
}

// --- Asset Methods (post-pipeline) ---

func (c *Client) PutAsset(key string, body io.ReadSeeker, contentType, cacheControl string) error {
	return c.backend.Put(c.bucketAssets, key, body, contentType, cacheControl)
}

func (c *Client) GetAsset(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketAssets, key)
}

func (c *Client) DeleteAsset(key string) error {
	return c.backend.Delete(c.bucketAssets, key)
}

func (c *Client) ListAssets(prefix string) ([]string, error) {
	return c.backend.List(c.bucketAssets, prefix)
}

// AssetURL builds the public URL the player embeds for a published asset.
// Local deployments serve assets back through the API instead.
func (c *Client) AssetURL(key string) string {
	if c.endpoint == "" {
		return fmt.Sprintf("/api/v1/assets/%s", key)
	}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketAssets, key)
}
