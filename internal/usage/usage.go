package usage

import (
	"github.com/spf13/pflag"
	"gopkg.in/segmentio/analytics-go.v3"
)

// Option is a function that configures a Properties instance.
type Option func(analytics.Properties)

// Flags reports the names, never the values, of the flags that were set.
func Flags(flags *pflag.FlagSet) Option {
	return func(p analytics.Properties) {
		var ff []string
		flags.Visit(func(flag *pflag.Flag) {
			ff = append(ff, flag.Name)
		})
		p["flags"] = ff
	}
}

// Direction reports the direction of the test run.
func Direction(dir string) Option {
	return func(p analytics.Properties) {
		p["direction"] = dir
	}
}

// Wait reports whether the command waited for completion, and with which timeout policy.
func Wait(wait bool, policy string) Option {
	return func(p analytics.Properties) {
		p["wait"] = wait
		if wait {
			p["timeout_policy"] = policy
		}
	}
}

// Slack reports Slack related settings.
func Slack(channels []string, when string) Option {
	return func(p analytics.Properties) {
		p["slack_channels_count"] = len(channels)
		p["slack_when"] = when
	}
}

// Output reports the output format.
func Output(format string) Option {
	return func(p analytics.Properties) {
		p["output"] = format
	}
}
