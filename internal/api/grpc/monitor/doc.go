// Package monitor implements the gRPC transport of tempwatch.
//
// The MonitorService uses protobuf well-known types (Empty, Struct,
// ListValue, BytesValue) as its messages, so no generated code is needed:
// the service descriptor, the client stub and the codecs between domain
// types and Struct documents all live in this package. Server adapts the
// monitor and preferences services to that API.
package monitor
