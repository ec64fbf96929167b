package objectclient

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts      map[string][]byte
	types     map[string]string
	deleted   []string
	putErr    error
	deleteErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not expected")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	api := newFakeS3()
	c := NewS3ClientWithAPI(api, "us-east-2", "chatlens-images")

	key := ImageKey("sess-1", "img-1")
	url, err := c.UploadFile(context.Background(), key, []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "sessions/sess-1/images/img-1.png", key)
	assert.Equal(t, "https://chatlens-images.s3.us-east-2.amazonaws.com/sessions/sess-1/images/img-1.png", url)
	assert.Equal(t, []byte("png-bytes"), api.puts[key])
	assert.Equal(t, "image/png", api.types[key])
}

func TestUploadFileError(t *testing.T) {
	api := newFakeS3()
	api.putErr = errors.New("access denied")
	c := NewS3ClientWithAPI(api, "us-east-2", "chatlens-images")

	_, err := c.UploadFile(context.Background(), "k", []byte("x"), "image/png")
	assert.ErrorContains(t, err, "s3 upload failed")
}

func TestDeleteFile(t *testing.T) {
	api := newFakeS3()
	c := NewS3ClientWithAPI(api, "us-east-2", "chatlens-images")

	require.NoError(t, c.DeleteFile(context.Background(), "sessions/a/images/b.png"))
	assert.Equal(t, []string{"sessions/a/images/b.png"}, api.deleted)

	api.deleteErr = errors.New("boom")
	assert.ErrorContains(t, c.DeleteFile(context.Background(), "k"), "s3 delete failed")
}
