// Package logger provides structured logging for exportkit using zerolog.
//
// The reader, binder and backends each log through a component logger
// obtained with Get, so a single Init call controls the whole composition.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("binder")
//	log.Debug("registered", logger.Fields(logger.FieldKey, key))
package logger
