// Package logger provides structured logging for scrollfeed using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("page-cache")
//	log.Info("page fetched", logger.Fields(logger.FieldKey, key.String()))
package logger
