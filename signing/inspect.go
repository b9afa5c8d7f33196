package signing

import (
	"encoding/hex"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
)

// KeyInfo summarizes an OpenPGP key read from an armored key file.
type KeyInfo struct {
	Fingerprint   string
	Identities    []string
	HasPrivateKey bool
}

// InspectKey reads the first entity of an ASCII-armored OpenPGP key ring
// (public or private) at path and reports its fingerprint, identities, and
// whether it carries private key material. This is a local convenience for
// validating a GpgKey/Keyring file before it is wired into a Config; the
// server is the one that actually signs publishes.
func InspectKey(path string) (*KeyInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot open key file", Err: err}
	}
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot parse armored OpenPGP key", Err: err}
	}
	if len(entities) == 0 {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "key ring contains no entities"}
	}

	entity := entities[0]
	info := &KeyInfo{
		Fingerprint:   hex.EncodeToString(entity.PrimaryKey.Fingerprint[:]),
		HasPrivateKey: entity.PrivateKey != nil,
	}
	for _, id := range entity.Identities {
		info.Identities = append(info.Identities, id.Name)
	}
	return info, nil
}
