package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("empty bucket accepted")
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&types.NoSuchKey{}) {
		t.Fatal("NoSuchKey not classified as not found")
	}
	if !isNotFound(fmt.Errorf("head: %w", &types.NotFound{})) {
		t.Fatal("wrapped NotFound not classified")
	}
	if isNotFound(errors.New("throttled")) {
		t.Fatal("generic error classified as not found")
	}
}

func TestObjectInfo(t *testing.T) {
	size := int64(42)
	ct := "text/csv"
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	info := objectInfo("run/out.csv", &size, &ct, &mod)
	if info.Key != "run/out.csv" || info.Size != 42 || info.ContentType != "text/csv" || !info.LastModified.Equal(mod) {
		t.Fatalf("info = %+v", info)
	}

	// nil fields fall back to zero values and a current timestamp
	info = objectInfo("k", nil, nil, nil)
	if info.Size != 0 || info.ContentType != "" || info.LastModified.IsZero() {
		t.Fatalf("info = %+v", info)
	}
}
