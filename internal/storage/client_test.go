package storage

import (
	"errors"
	"testing"

	"github.com/AnyUserName/ggpicture/internal/config"
)

func TestNewClientRequiresBucket(t *testing.T) {
	_, err := NewClient(config.Storage{Endpoint: "localhost:9000"}, "  ")
	if !errors.Is(err, ErrNoBucket) {
		t.Fatalf("got %v, want ErrNoBucket", err)
	}
}

func TestNewClientIsLazy(t *testing.T) {
	c, err := NewClient(config.Storage{
		Endpoint:  "127.0.0.1:1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, " renders ")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Bucket() != "renders" {
		t.Fatalf("bucket: got %q, want %q", c.Bucket(), "renders")
	}
}

func TestNewClientBadEndpoint(t *testing.T) {
	if _, err := NewClient(config.Storage{Endpoint: "http://host:9000/path"}, "renders"); err == nil {
		t.Fatal("expected error for endpoint with scheme and path")
	}
}
