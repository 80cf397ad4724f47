package cmd

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/lightbox/adapter"
	redisadapter "github.com/pithecene-io/lightbox/adapter/redis"
	"github.com/pithecene-io/lightbox/adapter/webhook"
	"github.com/pithecene-io/lightbox/cli/config"
	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/policy"
)

const (
	policyStrict   = "strict"
	policyBuffered = "buffered"
)

// adapterFlags are the action-publishing flags of the view command.
func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Publish viewer actions: webhook, redis (default: none)",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or redis:// URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel (default: " + redisadapter.DefaultChannel + ")",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-publish timeout",
			Value: 5 * time.Second,
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Retry attempts per publish",
			Value: 2,
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Webhook header as Key=Value (repeatable)",
		},
		&cli.StringFlag{
			Name:  "publish-policy",
			Usage: "Action delivery: strict (publish each) or buffered (publish on flush and exit)",
			Value: policyStrict,
		},
		&cli.IntFlag{
			Name:  "buffer-events",
			Usage: "Buffered policy capacity",
			Value: policy.DefaultBufferedConfig().MaxEvents,
		},
	}
}

// adapterChoice is the resolved adapter configuration.
type adapterChoice struct {
	adapterType string
	url         string
	channel     string
	headers     map[string]string
	timeout     time.Duration
	retries     int
	policy      string
	bufferSize  int
}

// parseAdapterChoice merges adapter flags over the config file section.
// An empty type means no adapter.
func parseAdapterChoice(c *cli.Context, cfg config.AdapterConfig) (adapterChoice, error) {
	ac := adapterChoice{
		adapterType: resolveString(c, "adapter", cfg.Type, ""),
		url:         resolveString(c, "adapter-url", cfg.URL, ""),
		channel:     resolveString(c, "adapter-channel", cfg.Channel, ""),
		timeout:     resolveDuration(c, "adapter-timeout", cfg.Timeout.Duration),
		retries:     resolveInt(c, "adapter-retries", cfg.Retries),
		headers:     maps.Clone(cfg.Headers),
		policy:      resolveString(c, "publish-policy", cfg.Policy, policyStrict),
		bufferSize:  c.Int("buffer-events"),
	}
	if !c.IsSet("buffer-events") && cfg.BufferEvents > 0 {
		ac.bufferSize = cfg.BufferEvents
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || k == "" {
			return adapterChoice{}, usageError("invalid --adapter-header %q: expected Key=Value", h)
		}
		if ac.headers == nil {
			ac.headers = make(map[string]string)
		}
		ac.headers[k] = v
	}

	switch ac.adapterType {
	case "":
		return ac, nil
	case "webhook", "redis":
	default:
		return adapterChoice{}, usageError("invalid adapter %q: must be webhook or redis", ac.adapterType)
	}
	if ac.url == "" {
		return adapterChoice{}, usageError("--adapter-url is required for the %s adapter", ac.adapterType)
	}
	if ac.retries < 0 {
		return adapterChoice{}, usageError("--adapter-retries must be >= 0")
	}
	switch ac.policy {
	case policyStrict:
	case policyBuffered:
		if ac.bufferSize <= 0 {
			return adapterChoice{}, usageError("--buffer-events must be > 0")
		}
	default:
		return adapterChoice{}, usageError("invalid publish policy %q: must be strict or buffered", ac.policy)
	}
	return ac, nil
}

// buildAdapter constructs the chosen adapter wrapped with publish metrics
// and the delivery policy. It returns nil when no adapter is configured.
func buildAdapter(ac adapterChoice, collector *metrics.Collector, logger *log.Logger) (policy.Policy, error) {
	var (
		inner adapter.Adapter
		err   error
	)
	switch ac.adapterType {
	case "":
		return nil, nil
	case "webhook":
		inner, err = webhook.New(webhook.Config{
			URL:     ac.url,
			Headers: ac.headers,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
	case "redis":
		inner, err = redisadapter.New(redisadapter.Config{
			URL:     ac.url,
			Channel: ac.channel,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter %q", ac.adapterType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", ac.adapterType, err)
	}
	instrumented := adapter.NewInstrumented(inner, collector)

	if ac.policy != policyBuffered {
		return policy.NewStrict(instrumented), nil
	}
	cfg := policy.DefaultBufferedConfig()
	cfg.MaxEvents = ac.bufferSize
	cfg.Logger = logger
	buffered, err := policy.NewBuffered(instrumented, cfg)
	if err != nil {
		return nil, err
	}
	return buffered, nil
}
