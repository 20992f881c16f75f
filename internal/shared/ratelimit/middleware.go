package ratelimit

import (
	"math"
	"strconv"
	"strings"

	apperrors "contacts-api/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// KeyFunc extracts the client key a request is limited by
type KeyFunc func(c *fiber.Ctx) string

// Options configures the Fiber rate-limit middleware
type Options struct {
	Store *Store
	KeyFn KeyFunc
	// TrustXForwardedFor keys clients by the first X-Forwarded-For entry.
	// Enable only behind a proxy that overwrites the header.
	TrustXForwardedFor bool
	// AddHeaders exposes the configured limits as X-RateLimit-* headers
	AddHeaders bool
}

// DefaultKeyFunc limits by client IP. X-Forwarded-For is only consulted
// when trustXFF is set. Returned keys never alias fasthttp buffers.
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(c *fiber.Ctx) string {
		if trustXFF {
			if ips := c.IPs(); len(ips) > 0 {
				if ip := strings.TrimSpace(ips[0]); ip != "" {
					return utils.CopyString(ip)
				}
			}
		}
		if ip := c.IP(); ip != "" {
			return utils.CopyString(ip)
		}
		return "unknown"
	}
}

// New returns a Fiber handler rejecting requests over the limit with 429
// and a JSON {error} body.
func New(opts Options) fiber.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustXForwardedFor)
	}

	return func(c *fiber.Ctx) error {
		key := opts.KeyFn(c)

		if opts.AddHeaders {
			c.Set("X-RateLimit-RPS", strconv.FormatFloat(opts.Store.RPS(), 'f', -1, 64))
			c.Set("X-RateLimit-Burst", strconv.Itoa(opts.Store.Burst()))
		}

		allowed, wait := opts.Store.Reserve(key)
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			appErr := apperrors.NewRateLimitError("Too many requests")
			return c.Status(appErr.HTTPCode).JSON(fiber.Map{
				"error": appErr.Message,
			})
		}

		return c.Next()
	}
}
