// Package imagesrc loads the image references clients send: data URLs,
// http(s) URLs and bare base64 strings.
package imagesrc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultMaxBytes is the largest image accepted from any source.
const DefaultMaxBytes int64 = 10 << 20

// Common errors returned by the resolver
var (
	ErrEmptyReference = errors.New("image reference is empty")
	ErrInvalidData    = errors.New("image data is not valid base64")
	ErrTooLarge       = errors.New("image exceeds size limit")
	ErrNotImage       = errors.New("content is not an image")
	ErrFetchFailed    = errors.New("failed to fetch image")
	ErrForbiddenHost  = errors.New("image host is not public")
)

// Image is a decoded image reference.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL encodes the image as a data URL.
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// Kind classifies a reference without loading it.
type Kind int

// Reference kinds.
const (
	KindBase64 Kind = iota
	KindDataURL
	KindHTTP
)

// Classify reports how a reference would be loaded.
func Classify(ref string) Kind {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "data:"):
		return KindDataURL
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return KindHTTP
	default:
		return KindBase64
	}
}

// Resolver loads image references.
type Resolver struct {
	client     *http.Client
	maxBytes   int64
	publicOnly bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the client used for http(s) references.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithPublicHostsOnly refuses to connect to loopback, private, link-local
// and other non-public addresses. The check runs on the resolved address of
// every connection, redirects included. It replaces any client set by
// WithHTTPClient.
func WithPublicHostsOnly() Option {
	return func(r *Resolver) { r.publicOnly = true }
}

// NewResolver creates a Resolver with a pooled client and a 30s timeout.
func NewResolver(opts ...Option) *Resolver {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = 30 * time.Second

	r := &Resolver{client: client, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(r)
	}
	if r.publicOnly {
		r.client = publicClient()
	}
	return r
}

func publicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}
	transport := cleanhttp.DefaultPooledTransport()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Transport: transport, Timeout: 30 * time.Second}
}

// rejectNonPublic runs after DNS resolution, so address is always an IP.
func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || !IsPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	return nil
}

// IsPublicIP reports whether ip is a globally routable unicast address.
func IsPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	}
	// 100.64.0.0/10 carrier-grade NAT
	if v4 := ip.To4(); v4 != nil && v4[0] == 100 && v4[1]&0xc0 == 64 {
		return false
	}
	return true
}

// Resolve loads the reference and checks that it is an image within the size
// limit. Bare base64 is assumed to be JPEG when sniffing is inconclusive.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyReference
	}

	var (
		data     []byte
		declared string
		err      error
	)
	switch Classify(ref) {
	case KindDataURL:
		data, declared, err = r.decodeDataURL(ref)
	case KindHTTP:
		data, declared, err = r.fetch(ctx, ref)
	default:
		data, err = r.decodeBase64(ref)
		declared = "image/jpeg"
	}
	if err != nil {
		return nil, err
	}

	return r.identify(data, declared)
}

func (r *Resolver) identify(data []byte, declared string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyReference
	}

	detected := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(detected.String(), "image/"):
		return &Image{Data: data, MIMEType: detected.String()}, nil
	case detected.Is("application/octet-stream") && strings.HasPrefix(declared, "image/"):
		return &Image{Data: data, MIMEType: declared}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotImage, detected.String())
	}
}

func (r *Resolver) decodeDataURL(ref string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data url", ErrInvalidData)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: data url is not base64 encoded", ErrInvalidData)
	}
	data, err := r.decodeBase64(payload)
	if err != nil {
		return nil, "", err
	}
	return data, strings.TrimSuffix(header, ";base64"), nil
}

func (r *Resolver) decodeBase64(s string) ([]byte, error) {
	if int64(base64.StdEncoding.DecodedLen(len(s))) > r.maxBytes+2 {
		return nil, ErrTooLarge
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(s); err == nil {
			if int64(len(data)) > r.maxBytes {
				return nil, ErrTooLarge
			}
			return data, nil
		}
	}
	return nil, ErrInvalidData
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > r.maxBytes {
		return nil, "", ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, "", ErrTooLarge
	}
	return data, resp.Header.Get("Content-Type"), nil
}
