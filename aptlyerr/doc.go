// Package aptlyerr defines the typed error taxonomy shared by every layer of
// the client: local parse and I/O failures, structured API failures reported
// by the Aptly server, transport failures, and configuration failures.
//
// # Design Philosophy
//
// The request layer never turns an error into a value: a call that fails at
// the server or the transport returns one of these types (or a wrapper
// around one), never a sentinel zero value. Failures to encode a request or
// decode a response body are plain wrapped errors outside this taxonomy.
// Higher layers use errors.As to categorize without depending on string
// matching.
package aptlyerr
