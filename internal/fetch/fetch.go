// Package fetch downloads test-case packs (tar archives, optionally
// zstd-compressed) over HTTP or from S3 and unpacks them into the user
// cache, keyed by the source URL. A pack is downloaded at most once;
// later fetches of the same URL reuse the cached directory.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
)

type Fetcher struct {
	packsDir string
	tmpDir   string
	client   *http.Client

	// inflight dedups concurrent fetches of the same pack; the channel
	// closes when the download either lands in the cache or fails.
	inflight *xsync.MapOf[string, chan struct{}]

	mu sync.Mutex
	s3 *s3.Client
}

// New creates a Fetcher storing packs under cacheDir.
func New(cacheDir string) (*Fetcher, error) {
	f := &Fetcher{
		packsDir: filepath.Join(cacheDir, "packs"),
		tmpDir:   filepath.Join(cacheDir, "tmp"),
		client:   &http.Client{},
		inflight: xsync.NewMapOf[string, chan struct{}](),
	}
	if err := os.MkdirAll(f.packsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create pack cache directory: %w", err)
	}
	if err := os.MkdirAll(f.tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tmp directory: %w", err)
	}
	return f, nil
}

// Fetch returns the directory holding the unpacked archive at rawURL,
// downloading it first unless a previous run already cached it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	key := cacheKey(rawURL)
	dest := filepath.Join(f.packsDir, key)
	if _, err := os.Stat(dest); err == nil {
		slog.Debug("test pack already cached", "url", rawURL, "dir", dest)
		return dest, nil
	}

	done := make(chan struct{})
	if other, loaded := f.inflight.LoadOrStore(key, done); loaded {
		select {
		case <-other:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if _, err := os.Stat(dest); err != nil {
			return "", fmt.Errorf("concurrent download of %s failed", rawURL)
		}
		return dest, nil
	}
	defer func() {
		f.inflight.Delete(key)
		close(done)
	}()

	slog.Info("fetching test pack", "url", rawURL)
	body, compressed, err := f.open(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var archive io.Reader = body
	if compressed {
		dec, err := zstd.NewReader(body)
		if err != nil {
			return "", fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		archive = dec
	}

	// unpack next to the cache and rename in, so a half-written pack
	// never appears under packsDir
	tmp := filepath.Join(f.tmpDir, uuid.New().String())
	if err := untar(archive, tmp); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("failed to unpack %s: %w", rawURL, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.RemoveAll(tmp)
		if _, statErr := os.Stat(dest); statErr == nil {
			return dest, nil
		}
		return "", fmt.Errorf("failed to move pack into cache: %w", err)
	}
	slog.Debug("unpacked test pack", "url", rawURL, "dir", dest)
	return dest, nil
}

// open starts the download and reports whether the stream is
// zstd-compressed, judging by the path suffix or the content type.
func (f *Fetcher) open(ctx context.Context, rawURL string) (io.ReadCloser, bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse url %s: %w", rawURL, err)
	}
	compressed := strings.HasSuffix(u.Path, ".zst")

	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, false, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, false, fmt.Errorf("failed to fetch %s: %s", rawURL, resp.Status)
		}
		if resp.Header.Get("Content-Type") == "application/zstd" {
			compressed = true
		}
		return resp.Body, compressed, nil

	case "s3":
		client, err := f.s3Client(ctx)
		if err != nil {
			return nil, false, err
		}
		obj, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to download %s from s3: %w", rawURL, err)
		}
		if obj.ContentType != nil && *obj.ContentType == "application/zstd" {
			compressed = true
		}
		return obj.Body, compressed, nil

	default:
		return nil, false, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
}

func (f *Fetcher) s3Client(ctx context.Context) (*s3.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.s3 == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		f.s3 = s3.NewFromConfig(cfg)
	}
	return f.s3, nil
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
