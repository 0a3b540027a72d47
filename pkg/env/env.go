// Package env reads the few settings needed before config.Load runs, such as
// the log format every binary picks while bootstrapping.
package env

import (
	"os"
	"strings"
)

// Prefix namespaces the shop's variables, matching the config package.
const Prefix = "HOMESHOP_"

// Get returns HOMESHOP_<key>, then the bare key, then fallback. Values are
// trimmed and blank ones count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
