// Package sensor produces periodic temperature samples.
//
// Two mutually exclusive sources implement Source: Thermal reads a hardware
// sensor exposed as a millidegree file, Simulated runs a bounded random walk
// on a timer. Select picks one of them once at startup.
package sensor
