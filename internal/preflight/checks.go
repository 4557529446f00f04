package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sys/unix"

	"ytharvest/internal/config"
	"ytharvest/internal/services"
	"ytharvest/internal/youtube"
)

// probeVideoID is looked up to validate the API key. Any id works; an
// unknown one still costs a single quota unit and returns 200.
const probeVideoID = "dQw4w9WgXcQ"

// CheckYouTube verifies the API key is set and accepted. It makes a single
// attempt with a short timeout.
func CheckYouTube(ctx context.Context, cfg *config.Config) Result {
	const name = "YouTube API"

	if err := cfg.RequireAPIKey(); err != nil {
		return Result{Name: name, Detail: "API key missing (set YOUTUBE_API_KEY)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL,
		youtube.WithRequestTimeout(cfg.RequestTimeout()))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := client.VideosByID(checkCtx, []string{probeVideoID}); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable, key accepted"}
}

// CheckRedis pings the cache server when one is configured. An unset URL
// passes because the cache is optional.
func CheckRedis(ctx context.Context, redisURL string) Result {
	const name = "Redis cache"

	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	client := redis.NewClient(opts)
	defer client.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(checkCtx).Err(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%v)", opts.Addr, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", opts.Addr)}
}

// CheckNotifications reports whether ntfy is configured. It never sends.
func CheckNotifications(cfg *config.Config) Result {
	const name = "Notifications"
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return Result{Name: name, Detail: fmt.Sprintf("topic %q must be a full URL", topic)}
	}
	return Result{Name: name, Passed: true, Detail: topic}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (YouTube API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (YouTube API unreachable)"
	}
	var apiErr *youtube.APIError
	if errors.As(err, &apiErr) && !errors.Is(err, services.ErrTransient) {
		return fmt.Sprintf("rejected (%d %s)", apiErr.StatusCode, apiErr.Reason)
	}
	return err.Error()
}
