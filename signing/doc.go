// Package signing resolves and serializes the GPG signing parameters sent
// to the server alongside a publish create/update request, and provides a
// local, client-side utility for inspecting an OpenPGP key file before
// wiring it into a Config (the server performs the actual signing; the
// client never signs anything itself).
package signing
