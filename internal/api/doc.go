// Package api exposes the dispatcher over HTTP. All operations travel through
// a single POST endpoint carrying the request boundary object; the static
// price feeds are served read-only alongside it.
package api
