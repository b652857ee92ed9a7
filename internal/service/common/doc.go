// Package common holds helpers shared by the server and the control tool.
//
// It provides a gRPC client for the MonitorService with per-call timeouts
// and the actor (user@host) that the client attaches to every request.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
