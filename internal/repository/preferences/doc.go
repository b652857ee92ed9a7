// Package preferences persists the user profile.
//
// FileRepository stores the profile as a flat JSON document produced with
// protobuf JSON from a structpb.Struct, so the file shares its encoding with
// the gRPC API. The Repository interface is what the preferences store
// depends on.
package preferences
