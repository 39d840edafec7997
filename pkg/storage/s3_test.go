package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &apiError{"NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	if in.ContentType != nil {
		f.types[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &apiError{"NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := NewS3(fake, "scores", "/library/")
	ctx := context.Background()

	if err := WriteAll(ctx, s, "ode.json", []byte(`{"songs":[]}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["library/ode.json"]; !ok {
		t.Fatalf("objects = %v, want key library/ode.json", fake.objects)
	}
	if got := fake.types["library/ode.json"]; got != "application/json" {
		t.Errorf("ContentType = %q", got)
	}
	got, err := ReadAll(ctx, s, "ode.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"songs":[]}` {
		t.Fatalf("ReadAll = %q", got)
	}

	ok, err := s.Exists(ctx, "ode.json")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := s.Delete(ctx, "ode.json"); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists(ctx, "ode.json")
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestS3Missing(t *testing.T) {
	s := NewS3(newFakeS3(), "scores", "")
	if _, err := s.Read(context.Background(), "nope.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read error = %v, want os.ErrNotExist", err)
	}
}

func TestS3Errors(t *testing.T) {
	fake := newFakeS3()
	s := NewS3(fake, "scores", "")
	ctx := context.Background()

	fake.putErr = errors.New("access denied")
	if err := WriteAll(ctx, s, "a.json", []byte("{}")); err == nil {
		t.Fatal("WriteAll succeeded with failing PutObject")
	}

	fake.headErr = &apiError{"AccessDenied"}
	if _, err := s.Exists(ctx, "a.json"); err == nil {
		t.Fatal("Exists succeeded with failing HeadObject")
	}

	if _, err := s.Read(ctx, "../a.json"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Read(../a.json) error = %v, want ErrInvalidPath", err)
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"})
	opts := c.Options()
	if opts.Region != "us-east-1" || !opts.UsePathStyle || opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:9000" {
		t.Errorf("options = region %q, path style %v", opts.Region, opts.UsePathStyle)
	}
	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "k" || creds.SecretAccessKey != "s" {
		t.Errorf("credentials = %+v, %v", creds, err)
	}
}
