package bootstrap

import (
	"github.com/kbukum/scrollfeed/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) satisfies
// GetServiceConfig via the promoted method.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
