package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/styleai-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator is a function-field Generator used to script chain behavior.
type stubGenerator struct {
	name       string
	calls      int
	generateFn func(ctx context.Context, req generation.Request) ([]generation.Image, error)
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) ([]generation.Image, error) {
	s.calls++
	return s.generateFn(ctx, req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() generation.Request {
	return generation.Request{
		FaceImage:     "https://example.com/face.jpg",
		HairstyleID:   "1",
		HairstyleName: "French waves",
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validRequest().Validate())

	noFace := validRequest()
	noFace.FaceImage = "  "
	assert.ErrorIs(t, noFace.Validate(), generation.ErrInvalidRequest)

	noName := validRequest()
	noName.HairstyleName = ""
	assert.ErrorIs(t, noName.Validate(), generation.ErrInvalidRequest)
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.HairstyleDescription = "soft romantic waves"
	req.ReferenceImage = "https://example.com/ref.jpg"

	prompt := generation.Prompt(req)

	assert.Contains(t, prompt, "French waves")
	assert.Contains(t, prompt, "soft romantic waves")
	assert.Contains(t, prompt, "reference picture")
}

func TestChain_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	first := &stubGenerator{name: "first", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return nil, generation.ErrContentBlocked
	}}
	second := &stubGenerator{name: "second", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return []generation.Image{{URL: "https://cdn.example.com/out.png"}}, nil
	}}
	third := &stubGenerator{name: "third", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		t.Fatal("third generator should not be called")
		return nil, nil
	}}

	chain, err := generation.NewChain(testLogger(), first, second, third)
	require.NoError(t, err)

	images, err := chain.Generate(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "second", images[0].Provider, "provider should default to generator name")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, third.calls)
}

func TestChain_EmptyResultFallsThrough(t *testing.T) {
	t.Parallel()

	empty := &stubGenerator{name: "empty", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return []generation.Image{}, nil
	}}
	good := &stubGenerator{name: "good", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return []generation.Image{{Data: []byte{1, 2, 3}, MIMEType: "image/png", Provider: "custom"}}, nil
	}}

	chain, err := generation.NewChain(testLogger(), empty, good)
	require.NoError(t, err)

	images, err := chain.Generate(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "custom", images[0].Provider, "explicit provider should be kept")
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	boom := errors.New("vendor unavailable")
	a := &stubGenerator{name: "a", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return nil, boom
	}}
	b := &stubGenerator{name: "b", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return nil, generation.ErrInvalidResponse
	}}

	chain, err := generation.NewChain(testLogger(), a, b)
	require.NoError(t, err)

	images, err := chain.Generate(context.Background(), validRequest())

	assert.Nil(t, images)
	assert.ErrorIs(t, err, generation.ErrAllGeneratorsFailed)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	assert.Contains(t, err.Error(), "a: vendor unavailable")
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	g := &stubGenerator{name: "g", generateFn: func(context.Context, generation.Request) ([]generation.Image, error) {
		return nil, errors.New("unused")
	}}
	chain, err := generation.NewChain(testLogger(), g)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = chain.Generate(ctx, validRequest())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, g.calls)
}

func TestNewChain_RequiresGenerators(t *testing.T) {
	t.Parallel()

	chain, err := generation.NewChain(testLogger())

	assert.Nil(t, chain)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	mock := generation.NewMockGenerator()
	ctx := context.Background()

	t.Run("reference image preferred", func(t *testing.T) {
		req := validRequest()
		req.ReferenceImage = "https://example.com/ref.jpg"

		images, err := mock.Generate(ctx, req)

		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "https://example.com/ref.jpg", images[0].URL)
		assert.Equal(t, "mock", images[0].Provider)
	})

	t.Run("catalog image for known hairstyle", func(t *testing.T) {
		images, err := mock.Generate(ctx, validRequest())

		require.NoError(t, err)
		assert.Contains(t, images[0].URL, "images.unsplash.com")
	})

	t.Run("face image for unknown hairstyle", func(t *testing.T) {
		req := validRequest()
		req.HairstyleID = "custom"

		images, err := mock.Generate(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, req.FaceImage, images[0].URL)
	})

	t.Run("no usable picture", func(t *testing.T) {
		req := validRequest()
		req.HairstyleID = "custom"
		req.FaceImage = "data:image/jpeg;base64,AAAA"

		_, err := mock.Generate(ctx, req)

		assert.ErrorIs(t, err, generation.ErrNoImages)
	})
}
