package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authcore/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putErr      error
	putKey      string
	putBody     []byte
	putSize     int64
	contentType string
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}

func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	f.putKey, f.putBody, f.putSize, f.contentType = key, body, size, opts.ContentType
	return minioLib.UploadInfo{Key: key, Size: size}, nil
}

func TestNewWithAPI_BucketExists(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	o, err := NewWithAPI(context.Background(), api, "outbox")
	require.NoError(t, err)
	assert.Equal(t, "outbox", o.bucket)
	assert.False(t, api.madeBucket)
}

func TestNewWithAPI_CreateBucket(t *testing.T) {
	api := &fakeMinio{bucketExists: false}
	_, err := NewWithAPI(context.Background(), api, "outbox")
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
}

func TestNewWithAPI_Errors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeMinio
	}{
		{name: "bucket exists error", api: &fakeMinio{bucketExistsErr: errors.New("boom")}},
		{name: "make bucket error", api: &fakeMinio{makeBucketErr: errors.New("fail")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewWithAPI(context.Background(), tt.api, "outbox")
			assert.Nil(t, o)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to ensure bucket exists")
		})
	}
}

func TestOutbox_Send(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	o, err := NewWithAPI(context.Background(), api, "outbox")
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := ulid.MustParse("01HZY0V3Q5X8J2K7M4N6P9R1ST")
	o.now = func() time.Time { return fixed }
	o.newID = func() ulid.ULID { return id }

	err = o.Send(context.Background(), model.Notification{
		Recipient:  "user@example.com",
		TemplateID: "password-reset",
		Data:       map[string]string{"reset_token": "tok", "email": "user@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "notifications/password-reset/01HZY0V3Q5X8J2K7M4N6P9R1ST.json", api.putKey)
	assert.Equal(t, "application/json", api.contentType)
	assert.Equal(t, int64(len(api.putBody)), api.putSize)

	var msg Message
	require.NoError(t, json.Unmarshal(api.putBody, &msg))
	assert.Equal(t, id.String(), msg.ID)
	assert.Equal(t, "user@example.com", msg.Recipient)
	assert.Equal(t, "tok", msg.Data["reset_token"])
	assert.True(t, fixed.Equal(msg.CreatedAt))
}

func TestOutbox_SendError(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	o, err := NewWithAPI(context.Background(), api, "outbox")
	require.NoError(t, err)

	api.putErr = errors.New("put-fail")

	err = o.Send(context.Background(), model.Notification{
		Recipient: "user@example.com",
		Data:      map[string]string{"reset_token": "secret-token"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload notification notifications/default/")
	assert.NotContains(t, err.Error(), "secret-token")
}
