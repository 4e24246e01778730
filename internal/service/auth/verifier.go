// Package auth verifies Firebase ID tokens presented by API clients.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/phrazzld/styleai-api/internal/platform/logger"
)

// GoogleJWKSURL serves the keys that sign Firebase ID tokens.
const GoogleJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// keyTTL is how long fetched signing keys are trusted before a refresh.
const keyTTL = time.Hour

// Claims holds the verified identity carried by an ID token.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	// VerifyIDToken checks signature, issuer, audience and lifetime.
	VerifyIDToken(ctx context.Context, token string) (*Claims, error)
}

// VerifierOptions configures a Firebase token verifier.
type VerifierOptions struct {
	// ProjectID is the Firebase project; it is the expected audience.
	ProjectID string
	// JWKSURL overrides GoogleJWKSURL.
	JWKSURL    string
	HTTPClient *http.Client
	// Now overrides the clock used for lifetime checks.
	Now func() time.Time
}

type firebaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// firebaseVerifier checks RS256 ID tokens against Google's published keys.
type firebaseVerifier struct {
	projectID string
	issuer    string
	jwksURL   string
	client    *http.Client
	now       func() time.Time
	clockSkew time.Duration

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// Ensure firebaseVerifier implements TokenVerifier interface
var _ TokenVerifier = (*firebaseVerifier)(nil)

// NewFirebaseVerifier creates a TokenVerifier for the given Firebase project.
func NewFirebaseVerifier(opts VerifierOptions) (TokenVerifier, error) {
	if opts.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}
	if opts.JWKSURL == "" {
		opts.JWKSURL = GoogleJWKSURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = cleanhttp.DefaultPooledClient()
		opts.HTTPClient.Timeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &firebaseVerifier{
		projectID: opts.ProjectID,
		issuer:    "https://securetoken.google.com/" + opts.ProjectID,
		jwksURL:   opts.JWKSURL,
		client:    opts.HTTPClient,
		now:       opts.Now,
		clockSkew: 2 * time.Minute,
		keys:      make(map[string]*rsa.PublicKey),
	}, nil
}

// VerifyIDToken implements TokenVerifier.
func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.now()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&firebaseClaims{},
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			return v.keyFor(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrKeysUnavailable):
			log.Warn("id token verification failed: keys unavailable", "error", err)
			return nil, ErrKeysUnavailable
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("id token verification failed: token expired")
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			log.Debug("id token verification failed: token not yet valid")
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("id token verification failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*firebaseClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("id token verification failed: invalid claims")
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// keyFor returns the key with the given id, refreshing the key set when it
// is stale or does not know the id.
func (v *firebaseVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, fmt.Errorf("%w: token has no key id", ErrInvalidToken)
	}

	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Sub(v.fetched) < keyTTL
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unknown key id", ErrInvalidToken)
}

func (v *firebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrKeysUnavailable, resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(k)
		if err != nil {
			slog.Warn("skipping malformed signing key", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: key set is empty", ErrKeysUnavailable)
	}

	v.mu.Lock()
	v.keys = keys
	v.fetched = v.now()
	v.mu.Unlock()
	return nil
}

func rsaKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: e}, nil
}
