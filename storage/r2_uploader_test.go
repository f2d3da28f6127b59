package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type stubPutter struct {
	input *s3.PutObjectInput
	body  string
	etag  *string
	err   error
}

func (p *stubPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		p.body = string(b)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &s3.PutObjectOutput{ETag: p.etag}, nil
}

func TestCloudflareR2UploaderUpload(t *testing.T) {
	putter := &stubPutter{etag: aws.String("\"abc123\"")}
	u := newR2Uploader(putter, "brackets-bucket", "https://cdn.example.com/")

	res, err := u.Upload(context.Background(), "brackets/7/snap.json", "application/json", strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if got := aws.ToString(putter.input.Bucket); got != "brackets-bucket" {
		t.Errorf("bucket = %q", got)
	}
	if got := aws.ToString(putter.input.ContentType); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	if putter.body != `{"ok":true}` {
		t.Errorf("body = %q", putter.body)
	}
	if res.ETag != "abc123" {
		t.Errorf("etag = %q, want unquoted", res.ETag)
	}
	if res.Location != "https://cdn.example.com/brackets/7/snap.json" {
		t.Errorf("location = %q", res.Location)
	}
}

func TestCloudflareR2UploaderUploadError(t *testing.T) {
	boom := errors.New("boom")
	u := newR2Uploader(&stubPutter{err: boom}, "b", "https://cdn.example.com")

	if _, err := u.Upload(context.Background(), "k", "application/json", strings.NewReader("{}")); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestGetPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "a/b.json", "https://cdn.example.com/a/b.json"},
		{"https://cdn.example.com/", "/a/b.json", "https://cdn.example.com/a/b.json"},
		{"https://cdn.example.com/public", "a.json", "https://cdn.example.com/public/a.json"},
		{"", "a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		u := newR2Uploader(nil, "b", tt.base)
		if got := u.GetPublicURL(tt.key); got != tt.want {
			t.Errorf("GetPublicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestNewCloudflareR2UploaderRejectsPartialConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	if !errors.Is(err, ErrInvalidR2Config) {
		t.Fatalf("err = %v, want ErrInvalidR2Config", err)
	}
}
