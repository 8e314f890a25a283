package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultSessionCacheTTL is how long a resolved token is kept in redis
	// before the identity provider is asked again.
	DefaultSessionCacheTTL = 15 * time.Minute

	sessionKeyPrefix = "liftlog-identity-session||"
)

var ErrTokenInvalid = errors.New("token invalid")

// Provider resolves bearer tokens to opaque user ids. The actual
// authentication lives in an external identity provider; resolved
// tokens are cached in redis to keep one introspection round-trip
// per token per TTL.
type Provider struct {
	baseURL     string
	httpClient  *http.Client
	redisClient *redis.Client
	ttl         time.Duration
}

func NewProvider(
	baseURL string,
	httpClient *http.Client,
	redisClient *redis.Client,
	ttl time.Duration,
) *Provider {
	return &Provider{
		baseURL:     baseURL,
		httpClient:  httpClient,
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// UserID returns the opaque user id for the given bearer token. The id is
// never inspected or validated here, only passed along as-is.
func (p *Provider) UserID(ctx context.Context, token string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.identity.userID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return "", ErrTokenInvalid
	}

	sessionKey := sessionKeyPrefix + token
	cmd := p.redisClient.Get(ctx, sessionKey)
	switch getErr := cmd.Err(); {
	case getErr == nil:
		return cmd.Val(), nil
	case !errors.Is(getErr, redis.Nil):
		// redis being down must not lock users out, fall through to introspection
		log.Errorf("identity session cache get: %s", getErr)
	}

	userID, err := p.introspect(ctx, token)
	if err != nil {
		return "", err
	}

	if setErr := p.redisClient.Set(ctx, sessionKey, userID, p.ttl).Err(); setErr != nil {
		log.Errorf("identity session cache set: %s", setErr)
	}

	return userID, nil
}

type introspectResponse struct {
	UserID string `json:"userId"`
}

func (p *Provider) introspect(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/introspect", nil)
	if err != nil {
		return "", fmt.Errorf("new introspect request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider introspect: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue below
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrTokenInvalid
	default:
		return "", fmt.Errorf("identity provider introspect: unexpected status %d", resp.StatusCode)
	}

	var introspectResp introspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&introspectResp); err != nil {
		return "", fmt.Errorf("decode introspect response: %w", err)
	}
	if introspectResp.UserID == "" {
		return "", errors.New("identity provider returned empty user id")
	}

	return introspectResp.UserID, nil
}
