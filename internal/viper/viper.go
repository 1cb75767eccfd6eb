// Package viper provides convenience functions over the official spf13/viper library.
// In particular, it satisfies the need of providing pre-configured viper instances.
package viper

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by viper.
const EnvPrefix = "HAMMING"

// New returns a new, pre-configured instance of viper. Keys are nested with "::" so that dots can appear in
// config values, and environment variables are looked up under EnvPrefix.
func New() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_", "-", "_"))
	return v
}

// BindPFlag binds a specific key to a pflag (as used by cobra), if the flag exists in flags.
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	viper.BindPFlag(v, "port", serverCmd.Flags(), "port")
func BindPFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) error {
	if flags == nil {
		return nil
	}
	f := flags.Lookup(name)
	if f == nil {
		return nil
	}
	return v.BindPFlag(key, f)
}

// BindEnv binds key to the environment variable EnvPrefix_env.
func BindEnv(v *viper.Viper, key, env string) error {
	return v.BindEnv(key, EnvPrefix+"_"+env)
}
