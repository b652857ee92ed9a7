// Package client implements the tempwatch-ctl subcommands.
//
// Every subcommand connects to the server over gRPC, performs one call (or
// follows the temperature stream) and prints the result.
package client
