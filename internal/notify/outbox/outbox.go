// Package outbox drops notifications as JSON objects into an S3-compatible
// bucket for an external mailer to pick up.
package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/oklog/ulid/v2"

	"github.com/dtroode/authcore/internal/model"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var _ model.Dispatcher = (*Outbox)(nil)

// Message is the object body written for each notification.
type Message struct {
	ID         string            `json:"id"`
	Recipient  string            `json:"recipient"`
	TemplateID string            `json:"template_id"`
	Data       map[string]string `json:"data"`
	CreatedAt  time.Time         `json:"created_at"`
}

type Outbox struct {
	api    minioAPI
	bucket string
	now    func() time.Time
	newID  func() ulid.ULID
}

// New creates an Outbox using a real *minio.Client instance.
func New(ctx context.Context, client *minio.Client, bucket string) (*Outbox, error) {
	return NewWithAPI(ctx, client, bucket)
}

// NewWithAPI allows injecting a mockable API (used in tests).
func NewWithAPI(ctx context.Context, api minioAPI, bucket string) (*Outbox, error) {
	o := &Outbox{
		api:    api,
		bucket: bucket,
		now:    time.Now,
		newID:  ulid.Make,
	}

	if err := o.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return o, nil
}

func (o *Outbox) ensureBucketExists(ctx context.Context) error {
	exists, err := o.api.BucketExists(ctx, o.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := o.api.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Send writes notification to notifications/<template>/<ulid>.json. ULIDs
// sort by creation time, so a consumer can list keys in delivery order.
func (o *Outbox) Send(ctx context.Context, notification model.Notification) error {
	id := o.newID()

	body, err := json.Marshal(Message{
		ID:         id.String(),
		Recipient:  notification.Recipient,
		TemplateID: notification.TemplateID,
		Data:       notification.Data,
		CreatedAt:  o.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := objectKey(notification.TemplateID, id)

	_, err = o.api.PutObject(ctx, o.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload notification %s: %w", key, err)
	}

	return nil
}

func objectKey(templateID string, id ulid.ULID) string {
	if templateID == "" {
		templateID = "default"
	}
	return path.Join("notifications", templateID, id.String()+".json")
}
