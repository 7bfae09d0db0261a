package output

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

func document(name, source string) *router.Document {
	sum := sha256.Sum256([]byte(source))
	return &router.Document{
		Name:     name,
		Variant:  "deterministic",
		Source:   source,
		Checksum: hex.EncodeToString(sum[:]),
	}
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src", "generated", "routers")
	w := NewFileWriter(dir)
	doc := document("CoreRouter", "contract CoreRouter {}\n")

	res, err := w.Write(context.Background(), doc)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	want := filepath.Join(dir, "CoreRouter.g.sol")
	if res.Location != want || res.Unchanged {
		t.Errorf("result = %+v, want new file at %s", res, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != doc.Source {
		t.Errorf("content = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1", len(entries))
	}
}

func TestFileWriterSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir)
	doc := document("CoreRouter", "contract CoreRouter {}\n")

	if _, err := w.Write(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	path := w.Path(doc)
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res, err := w.Write(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Unchanged {
		t.Error("expected unchanged result")
	}
	info, _ := os.Stat(path)
	if !info.ModTime().Equal(old) {
		t.Error("unchanged file was rewritten")
	}

	changed := document("CoreRouter", "contract CoreRouter { }\n")
	res, err = w.Write(context.Background(), changed)
	if err != nil {
		t.Fatal(err)
	}
	if res.Unchanged {
		t.Error("changed document reported unchanged")
	}
	data, _ := os.ReadFile(path)
	if string(data) != changed.Source {
		t.Errorf("content = %q", data)
	}
}

func TestFileWriterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileWriter(t.TempDir()).Write(ctx, document("A", "x"))
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Writer(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantKey string
	}{
		{name: "no prefix", prefix: "", wantKey: "CoreRouter.g.sol"},
		{name: "prefix", prefix: "routers", wantKey: "routers/CoreRouter.g.sol"},
		{name: "slashed prefix", prefix: "/routers/v1/", wantKey: "routers/v1/CoreRouter.g.sol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{}
			w := NewS3Writer(client, "bucket", tt.prefix)
			doc := document("CoreRouter", "contract CoreRouter {}\n")

			res, err := w.Write(context.Background(), doc)
			if err != nil {
				t.Fatalf("Write error: %v", err)
			}
			if res.Location != "s3://bucket/"+tt.wantKey {
				t.Errorf("Location = %s", res.Location)
			}
			if len(client.inputs) != 1 {
				t.Fatalf("PutObject called %d times", len(client.inputs))
			}
			in := client.inputs[0]
			if *in.Bucket != "bucket" || *in.Key != tt.wantKey {
				t.Errorf("bucket/key = %s/%s", *in.Bucket, *in.Key)
			}
			if in.Metadata["checksum"] != doc.Checksum || in.Metadata["router"] != "CoreRouter" {
				t.Errorf("metadata = %v", in.Metadata)
			}
			if client.bodies[0] != doc.Source {
				t.Errorf("body = %q", client.bodies[0])
			}
		})
	}
}

func TestS3WriterError(t *testing.T) {
	client := &fakeS3{err: stderrors.New("access denied")}
	_, err := NewS3Writer(client, "bucket", "").Write(context.Background(), document("A", "x"))

	var ce *errors.CannonError
	if !stderrors.As(err, &ce) || ce.Code != "E151" {
		t.Fatalf("error = %v, want E151", err)
	}
}

func TestNewS3Client(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config")
	credentialsFile := filepath.Join(dir, "credentials")
	if err := os.WriteFile(configFile, []byte("[profile cannon]\nregion = eu-central-1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(credentialsFile, []byte("[cannon]\naws_access_key_id = AKIDPROFILE\naws_secret_access_key = profile-secret\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AWS_CONFIG_FILE", configFile)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credentialsFile)
	t.Setenv("AWS_PROFILE", "cannon")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	t.Run("shared profile", func(t *testing.T) {
		client, err := NewS3Client(context.Background(), S3Options{})
		if err != nil {
			t.Fatalf("NewS3Client error: %v", err)
		}
		opts := client.Options()
		if opts.Region != "eu-central-1" {
			t.Errorf("region = %q, want eu-central-1", opts.Region)
		}
		creds, err := opts.Credentials.Retrieve(context.Background())
		if err != nil {
			t.Fatalf("Retrieve error: %v", err)
		}
		if creds.AccessKeyID != "AKIDPROFILE" || creds.SecretAccessKey != "profile-secret" {
			t.Errorf("credentials = %s/%s", creds.AccessKeyID, creds.SecretAccessKey)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		client, err := NewS3Client(context.Background(), S3Options{
			Region:    "eu-west-1",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		if err != nil {
			t.Fatalf("NewS3Client error: %v", err)
		}
		opts := client.Options()
		if opts.Region != "eu-west-1" || !opts.UsePathStyle || opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:9000" {
			t.Errorf("options = region %s path-style %v endpoint %v", opts.Region, opts.UsePathStyle, opts.BaseEndpoint)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		t.Setenv("AWS_PROFILE", "absent")
		_, err := NewS3Client(context.Background(), S3Options{})

		var ce *errors.CannonError
		if !stderrors.As(err, &ce) || ce.Code != "E152" {
			t.Fatalf("error = %v, want E152", err)
		}
	})
}
