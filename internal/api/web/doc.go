// Package web serves the UI surface of tempwatch over HTTP.
//
// A gorilla/mux router exposes JSON endpoints for the temperature, the
// profile and the conversation, and a WebSocket endpoint fed by Hub, which
// pushes every reading and alert to the connected observers.
package web
