// Package config defines the YAML settings shared by the tempwatch binaries
// and provides helpers to load, validate, default and save them.
//
// A single Config carries the monitor thresholds, the sample source
// settings, the preferences location and the listen addresses of the gRPC
// and HTTP surfaces.
package config
