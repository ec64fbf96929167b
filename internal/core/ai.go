package core

import "context"

// LLMProvider generates a single-turn reply for a prompt.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
}
