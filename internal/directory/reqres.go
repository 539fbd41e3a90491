package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/observability"
	"github.com/example/order-service/internal/pkg/breaker"
	"github.com/example/order-service/internal/pkg/retry"
	"go.uber.org/zap"
)

// Client answers find-user-by-email queries against a snapshot of the
// external user directory. The full paginated list is fetched once, on first
// use, and kept for the process lifetime; a failed fetch is not cached, so
// the next call retries the upstream.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics observability.Metrics
	breaker *breaker.Breaker
	retry   config.Retry

	mu    sync.Mutex
	users []domain.User
}

func New(cfg config.Directory, retryPolicy config.Retry, brk *breaker.Breaker, logger *zap.Logger, metrics observability.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
			},
		},
		logger:  logger,
		metrics: metrics,
		breaker: brk,
		retry:   retryPolicy,
	}
}

// FindByEmail resolves an email against the cached snapshot. The bool is
// false when the email is simply unknown; a non-nil error means the snapshot
// could not be loaded at all.
func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	users, err := c.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, true, nil
		}
	}
	return nil, false, nil
}

// snapshot returns the cached user list, loading it under the lock on first
// use. Holding the mutex across the fetch single-flights concurrent
// first-time callers.
func (c *Client) snapshot(ctx context.Context) ([]domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.users != nil {
		return c.users, nil
	}

	if err := c.breaker.Allow(); err != nil {
		c.metrics.ObserveDirectoryFetch(0, false)
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}

	start := time.Now()
	users, err := c.fetchAll(ctx)
	durMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		c.breaker.Failure()
		c.metrics.ObserveDirectoryFetch(durMs, false)
		c.logger.Error("directory fetch failed",
			zap.String("base_url", c.baseURL),
			zap.Float64("fetch_ms", durMs),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}

	c.breaker.Success()
	c.metrics.ObserveDirectoryFetch(durMs, true)
	c.logger.Info("directory snapshot loaded",
		zap.Int("users", len(users)),
		zap.Float64("fetch_ms", durMs),
	)

	c.users = users
	return c.users, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for page := 1; ; page++ {
		var resp usersPage
		err := retry.Do(ctx, c.retry, func() error {
			var ferr error
			resp, ferr = c.fetchPage(ctx, page)
			return ferr
		})
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, rec := range resp.Data {
			users = append(users, domain.User{
				Email:     rec.Email,
				FirstName: rec.FirstName,
				LastName:  rec.LastName,
			})
		}

		if page >= resp.TotalPages {
			return users, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, page int) (usersPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return usersPage{}, err
	}
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return usersPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return usersPage{}, fmt.Errorf("directory returned status %s", resp.Status)
	}

	var out usersPage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return usersPage{}, fmt.Errorf("decode directory response: %w", err)
	}
	return out, nil
}

// Upstream record; only email and name fields are consumed.
type userRecord struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type usersPage struct {
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
	Data       []userRecord `json:"data"`
}
