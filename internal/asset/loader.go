package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/scenecraft/scenecraft/internal/engine"
)

const maxParallelLoads = 4

var (
	// ErrUnsupportedSource is returned for src values the loader cannot resolve.
	ErrUnsupportedSource = errors.New("unsupported image source")
	// ErrBlockedAddress is returned when a remote source resolves to a
	// loopback, private or link-local address.
	ErrBlockedAddress = errors.New("image source address not allowed")
)

// Loader resolves an image element's src to a decoded bitmap. It accepts
// stored asset paths, http(s) URLs and base64 data URLs.
type Loader struct {
	dir    string
	client *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	allowPrivate bool
}

// AllowPrivateNetworks lets remote fetches reach loopback and private
// addresses. Only for trusted callers such as the local CLI.
func AllowPrivateNetworks() LoaderOption {
	return func(c *loaderConfig) { c.allowPrivate = true }
}

// NewLoader creates a loader reading stored assets from dir. Remote fetches
// give up after timeout and refuse non-public addresses unless
// AllowPrivateNetworks is set.
func NewLoader(dir string, timeout time.Duration, opts ...LoaderOption) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var cfg loaderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	dialer := &net.Dialer{Timeout: timeout}
	if !cfg.allowPrivate {
		dialer.Control = publicOnly
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: timeout,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Loader{dir: dir, client: &http.Client{Timeout: timeout, Transport: transport}}
}

// publicOnly is a dialer control hook. It runs after name resolution, so
// redirects and DNS names pointing inward are caught too.
func publicOnly(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if blockedAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func blockedAddr(a netip.Addr) bool {
	a = a.Unmap()
	return !a.IsValid() ||
		a.IsLoopback() ||
		a.IsPrivate() ||
		a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() ||
		a.IsInterfaceLocalMulticast() ||
		a.IsMulticast() ||
		a.IsUnspecified() ||
		cgnat.Contains(a)
}

var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// Load fetches and decodes src.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	case strings.HasPrefix(src, URLPrefix):
		return l.open(strings.TrimPrefix(src, URLPrefix))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, src)
	}
}

// Result is the outcome of loading one source.
type Result struct {
	Src   string
	Image image.Image
	Err   error
}

// LoadAll loads srcs concurrently. Results are in srcs order; a failed load
// carries its error instead of aborting the others.
func (l *Loader) LoadAll(ctx context.Context, srcs []string) []Result {
	results := make([]Result, len(srcs))
	var g errgroup.Group
	g.SetLimit(maxParallelLoads)
	for i, src := range srcs {
		g.Go(func() error {
			img, err := l.Load(ctx, src)
			results[i] = Result{Src: src, Image: img, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// Hydrate loads every pending image of e and attaches the bitmaps. Failed
// sources are attached as failed so they render as error placeholders.
func Hydrate(ctx context.Context, l *Loader, e *engine.Engine) {
	for _, res := range l.LoadAll(ctx, e.PendingImageSources()) {
		Attach(e, res)
	}
}

// Attach applies one load result to e.
func Attach(e *engine.Engine, res Result) {
	if res.Err != nil {
		slog.Warn("image load failed", "src", res.Src, "error", res.Err)
		e.AttachBitmap(res.Src, nil)
		return
	}
	e.AttachBitmap(res.Src, res.Image)
}

func (l *Loader) open(name string) (image.Image, error) {
	// Clean against root so "../" cannot escape the asset directory.
	clean := path.Clean("/" + name)
	f, err := os.Open(filepath.Join(l.dir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return decode(io.LimitReader(resp.Body, maxUploadSize))
}

func decodeDataURL(src string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL must be base64", ErrUnsupportedSource)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return decode(bytes.NewReader(raw))
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
