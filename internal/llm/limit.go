package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute stays inside the Gemini free tier for flash models.
const DefaultRequestsPerMinute = 10

// limitedClient spaces requests to the wrapped client.
type limitedClient struct {
	Client
	limiter *rate.Limiter
}

// WithRateLimit wraps client so that at most perMinute requests start in any
// minute. A non-positive perMinute returns client unchanged.
func WithRateLimit(client Client, perMinute int) Client {
	if client == nil || perMinute <= 0 {
		return client
	}
	return &limitedClient{
		Client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

// GenerateText waits for the limiter before calling the wrapped client.
func (c *limitedClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.Client.GenerateText(ctx, prompt)
}
