package fetcher

import (
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
	"github.com/oshokin/mod-mender/internal/logger"

	// Ensure SHA512 is available for checksum verification.
	_ "crypto/sha512"
)

const (
	// DefaultFileMode is the mode of downloaded jars.
	DefaultFileMode os.FileMode = 0o644

	// DefaultChecksumFunction matches the digest Modrinth publishes as "sha512".
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	defaultTimeout = 10 * time.Second
)

var (
	// ErrBadHTTPStatus is returned when the artifact host answers with a non-200 status.
	ErrBadHTTPStatus = errors.New("unexpected http status")

	errDestinationRequired = errors.New("destination directory must be provided")
)

// Request describes one jar replacement.
type Request struct {
	// PreviousPath is the jar being superseded; empty when nothing is installed.
	PreviousPath string
	// URL is the download location of the new jar.
	URL string
	// DestinationDir is where the new jar is written.
	DestinationDir string
	// SHA512 is the expected hex digest; empty disables verification.
	SHA512 string
}

// Result reports what Replace did on disk.
type Result struct {
	// Path is the location of the new jar.
	Path string
	// Filename is the decoded last segment of the download URL.
	Filename string
	// RemovedPrevious is true when the superseded jar was deleted.
	RemovedPrevious bool
}

// Fetcher downloads artifacts over HTTP.
type Fetcher struct {
	// httpClient performs the downloads; its Timeout bounds each one.
	httpClient *http.Client
	// userAgent is sent with every download request.
	userAgent string
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-download timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *Fetcher) {
		if httpClient != nil {
			f.httpClient = httpClient
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Replace deletes the previous jar (best effort) and then downloads the new
// one. Nothing is touched if ctx is already done. The deletion is not rolled
// back when the download fails: the mod is then left without a jar and the
// error says so.
func (f *Fetcher) Replace(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.DestinationDir == "" {
		return nil, errDestinationRequired
	}

	filename, err := domain.FilenameFromURL(req.URL)
	if err != nil {
		return nil, err
	}

	var checksum []byte

	if req.SHA512 != "" {
		if checksum, err = hex.DecodeString(req.SHA512); err != nil {
			return nil, fmt.Errorf("decode sha512 of %s: %w", filename, err)
		}
	}

	result := &Result{
		Path:     filepath.Join(req.DestinationDir, filename),
		Filename: filename,
	}

	result.RemovedPrevious = removePrevious(ctx, req.PreviousPath)

	if err = f.download(ctx, req.URL, result.Path, checksum); err != nil {
		if result.RemovedPrevious {
			return result, fmt.Errorf("download %s (previous jar %s already removed): %w",
				filename, req.PreviousPath, err)
		}

		return result, fmt.Errorf("download %s: %w", filename, err)
	}

	logger.InfoKV(ctx, "Downloaded file", "path", result.Path)

	return result, nil
}

// removePrevious deletes path if it names an existing regular file.
func removePrevious(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to inspect previous file", "path", path, "error", err)
		}

		return false
	}

	if info.IsDir() {
		logger.WarnKV(ctx, "Previous file is a directory, leaving it alone", "path", path)

		return false
	}

	if err = os.Remove(path); err != nil {
		logger.WarnKV(ctx, "Unable to remove previous file", "path", path, "error", err)

		return false
	}

	logger.DebugKV(ctx, "Removed previous file", "path", path)

	return true
}

// download streams url into target through go-update, which writes a
// ".<name>.new" sibling and renames it over target.
func (f *Fetcher) download(ctx context.Context, url, target string, checksum []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	response, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", url, response.Status, ErrBadHTTPStatus)
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	// go-update renames the current target away before moving the new file
	// in, so the target has to exist.
	placeholder := false

	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var file *os.File

		if file, err = os.Create(target); err != nil {
			return err
		}

		_ = file.Close()
		placeholder = true
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(response.Body, options); err != nil {
		if placeholder {
			_ = os.Remove(target)
		}

		return err
	}

	oldFile := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".old")
	if _, err = os.Stat(oldFile); err == nil {
		_ = os.Remove(oldFile)
	}

	return nil
}
