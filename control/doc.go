// Package control extracts and parses the control paragraph of a Debian
// binary package (.deb): a Unix ar archive whose control.tar[.gz|.bz2|.xz|
// .zst] member contains a POSIX tar with a ./control member holding an
// RFC-822 style paragraph of Name: value fields.
package control
