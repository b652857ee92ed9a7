// Package logger wraps zap for the tempwatch binaries.
//
// A global sugared logger writes console-formatted lines to stdout. Services
// carry a named, field-enriched logger inside their context.Context and log
// through the package helpers (InfoKV, ErrorKV, ...), which pick the logger
// from the context and fall back to the global one.
package logger
