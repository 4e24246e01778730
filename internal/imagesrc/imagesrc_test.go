package imagesrc_test

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01")
)

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, imagesrc.KindDataURL, imagesrc.Classify("data:image/png;base64,AAAA"))
	assert.Equal(t, imagesrc.KindHTTP, imagesrc.Classify("https://example.com/a.jpg"))
	assert.Equal(t, imagesrc.KindHTTP, imagesrc.Classify(" http://x/img.jpg"))
	assert.Equal(t, imagesrc.KindBase64, imagesrc.Classify("/9j/4AAQSkZJRg=="))
}

func TestResolve_DataURL(t *testing.T) {
	t.Parallel()

	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	img, err := imagesrc.NewResolver().Resolve(context.Background(), ref)

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, ref, img.DataURL())
}

func TestResolve_BareBase64(t *testing.T) {
	t.Parallel()

	img, err := imagesrc.NewResolver().Resolve(context.Background(), base64.StdEncoding.EncodeToString(jpegBytes))

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegBytes), img.Base64())
}

func TestResolve_BareBase64AssumedJPEG(t *testing.T) {
	t.Parallel()

	opaque := []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xfd, 0xfc}

	img, err := imagesrc.NewResolver().Resolve(context.Background(), base64.StdEncoding.EncodeToString(opaque))

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestResolve_HTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/face.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>hi</body></html>"))
		case "/huge.jpg":
			_, _ = w.Write(append(jpegBytes, make([]byte, 2048)...))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	resolver := imagesrc.NewResolver(imagesrc.WithHTTPClient(server.Client()), imagesrc.WithMaxBytes(1024))
	ctx := context.Background()

	img, err := resolver.Resolve(ctx, server.URL+"/face.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = resolver.Resolve(ctx, server.URL+"/page.html")
	assert.ErrorIs(t, err, imagesrc.ErrNotImage)

	_, err = resolver.Resolve(ctx, server.URL+"/missing.jpg")
	assert.ErrorIs(t, err, imagesrc.ErrFetchFailed)

	_, err = resolver.Resolve(ctx, server.URL+"/huge.jpg")
	assert.ErrorIs(t, err, imagesrc.ErrTooLarge)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	resolver := imagesrc.NewResolver(imagesrc.WithMaxBytes(16))
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		want error
	}{
		{name: "empty", ref: "  ", want: imagesrc.ErrEmptyReference},
		{name: "invalid base64", ref: "not*base64!", want: imagesrc.ErrInvalidData},
		{name: "data url without comma", ref: "data:image/png;base64", want: imagesrc.ErrInvalidData},
		{name: "data url not base64", ref: "data:text/plain,hello", want: imagesrc.ErrInvalidData},
		{name: "too large", ref: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 64))), want: imagesrc.ErrTooLarge},
		{name: "text payload", ref: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), want: imagesrc.ErrNotImage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tc.ref)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResolve_PublicHostsOnly(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	_, err := imagesrc.NewResolver(imagesrc.WithPublicHostsOnly()).Resolve(context.Background(), srv.URL+"/face.png")

	assert.ErrorIs(t, err, imagesrc.ErrForbiddenHost)
	assert.ErrorIs(t, err, imagesrc.ErrFetchFailed)
	assert.Zero(t, hits.Load(), "no request reaches the loopback server")

	img, err := imagesrc.NewResolver().Resolve(context.Background(), srv.URL+"/face.png")
	require.NoError(t, err, "unrestricted resolvers still reach local hosts")
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestIsPublicIP(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"8.8.8.8":          true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"10.1.2.3":         false,
		"172.16.0.1":       false,
		"192.168.1.10":     false,
		"169.254.169.254":  false,
		"100.64.0.1":       false,
		"0.0.0.0":          false,
		"::1":              false,
		"fd00::1":          false,
		"fe80::1":          false,
		"::ffff:127.0.0.1": false,
	}
	for addr, want := range tests {
		assert.Equal(t, want, imagesrc.IsPublicIP(net.ParseIP(addr)), addr)
	}
}
