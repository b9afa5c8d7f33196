// Package aptlyclient is the HTTP client for the Aptly REST API: a single
// request method that performs JSON, URL-encoded, or multipart requests and
// decodes responses or a typed API error, and the typed operations over
// the server's files/repos/snapshots/packages/publish surface.
//
// # Design Philosophy
//
// The request layer never turns a failure into a value. A non-2xx response
// is returned as *aptlyerr.APIError and a transport failure as
// *aptlyerr.TransportError; a failure to encode a request or to decode a
// response body is returned as a plain wrapped error, not as an aptlyerr
// type. Every blocking method takes a
// context.Context first, so a caller cancelling that context aborts the
// in-flight HTTP call rather than waiting for it to finish.
package aptlyclient
