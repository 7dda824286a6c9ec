package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

const DefaultConnectTimeout = 5 * time.Second

// Config holds the connection settings for Valkey.
type Config struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

// Client wraps valkey-go with key prefixing and the few commands the bot uses.
// Create it with NewClient; the caller owns Close.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewClient connects and pings the server, failing if it is not reachable
// within the connect timeout.
func NewClient(cfg Config) (*Client, error) {
	opts := valkeylib.ClientOption{
		InitAddress:  []string{cfg.Address},
		SelectDB:     cfg.DB,
		// Only plain commands are sent; client-side caching stays off.
		DisableCache: true,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	return &Client{
		inner:     inner,
		keyPrefix: normalizePrefix(cfg.KeyPrefix),
	}, nil
}

func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Key joins the parts under the configured prefix.
// Key("greeted", "123@s.whatsapp.net") -> "piebot:greeted:123@s.whatsapp.net"
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	return c.keyPrefix + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// SetNX stores key only if it does not exist yet and reports whether it did.
// A ttl of zero keeps the key forever.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	var cmd valkeylib.Completed
	if ttl > 0 {
		cmd = c.inner.B().Set().Key(key).Value(value).Nx().Ex(ttl).Build()
	} else {
		cmd = c.inner.B().Set().Key(key).Value(value).Nx().Build()
	}

	err := c.inner.Do(ctx, cmd).Error()
	if IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountKeys walks the keyspace with SCAN and counts keys matching pattern.
func (c *Client) CountKeys(ctx context.Context, pattern string) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		cmd := c.inner.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		entry, err := c.inner.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return total, fmt.Errorf("failed to scan keys: %w", err)
		}
		total += len(entry.Elements)

		cursor = entry.Cursor
		if cursor == 0 {
			return total, nil
		}
	}
}

// IsNil reports whether err is a Valkey NIL reply.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}
