// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment using Viper.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("productfeed", &cfg)
//
// Environment variables override file values. With an env prefix set
// (WithEnvPrefix("SCROLLFEED")), SCROLLFEED_FEED_PAGE_SIZE maps to
// feed.page_size; without one every variable is considered.
package config
