package usage

import (
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/segmentio/analytics-go.v3"

	"github.com/hammingai/hammingctl/internal/ci"
	"github.com/hammingai/hammingctl/internal/setup"
	"github.com/hammingai/hammingctl/internal/version"
)

// anonymousUser is reported instead of any user identity.
const anonymousUser = "hammingctlanon"

// DefaultClient is the default preconfigured instance of Client.
var DefaultClient = NewClient(true)

// Client is a thin wrapper around analytics.Client.
type Client struct {
	client  analytics.Client
	Enabled bool
}

// debugLogger is a logger that redirects logs to the debug log.
type debugLogger struct{}

func (l debugLogger) Logf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

func (l debugLogger) Errorf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// NewClient creates a new instance of Client.
func NewClient(enabled bool) *Client {
	client, err := analytics.NewWithConfig(setup.SegmentWriteKey, analytics.Config{
		BatchSize: 1,
		DefaultContext: &analytics.Context{
			App: analytics.AppInfo{
				Name:    "hammingctl",
				Version: version.Version,
			},
			OS: analytics.OSInfo{
				Name: runtime.GOOS + " " + runtime.GOARCH,
			},
		},
		Logger: debugLogger{},
	})
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create segment client")
		return &Client{}
	}

	return &Client{client: client, Enabled: enabled}
}

// Properties returns the properties that Collect would report for subject.
func Properties(subject string, opts ...Option) analytics.Properties {
	p := analytics.NewProperties()
	p.Set("subject_name", cases.Title(language.English).String(subject)).
		Set("product_area", "Testing").
		Set("product_sub_area", "hammingctl").
		Set("ci", ci.GetProvider().Name)

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Collect reports the usage of subject along with its attached metadata. Failures are only logged at debug level,
// usage metrics never get in the way of a command.
func (c *Client) Collect(subject string, opts ...Option) {
	if !c.Enabled || c.client == nil {
		return
	}

	if err := c.client.Enqueue(analytics.Track{
		UserId:     anonymousUser,
		Event:      "Command Executed",
		Properties: Properties(subject, opts...),
	}); err != nil {
		log.Debug().Err(err).Msg("Failed to collect usage metrics")
	}
}

// Close flushes and closes the underlying client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
