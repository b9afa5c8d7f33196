package aptlypkg

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/control"
	"github.com/cyril-s/aptly-ctl-go/debversion"
)

// hashBufSize is the streaming read chunk size used while fingerprinting a
// package file on disk.
const hashBufSize = 1 << 20 // 1 MiB

// Package is a package identity plus the extra metadata the server expects
// to accompany an uploaded .deb: the on-disk paths, size, and the four
// standard digests.
type Package struct {
	Key           Key
	Filename      string
	CanonicalPath string
	OriginalPath  string
	Size          int64
	MD5           string
	SHA1          string
	SHA256        string
	SHA512        string
	Control       control.Paragraph

	// Fields mirrors the extra fields the server attaches to an uploaded
	// package: Filename, FilesHash, Key, ShortKey, MD5sum, SHA1, SHA256,
	// SHA512, Size.
	Fields map[string]string
}

// FromFile streams path to compute its digests and files-hash, reads its
// control paragraph, and returns the resulting package identity.
func FromFile(path string) (*Package, error) {
	canonicalPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot resolve path", Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot open package file", Err: err}
	}
	defer f.Close()

	md5h, sha1h, sha256h, sha512h := md5.New(), sha1.New(), sha256.New(), sha512.New()
	w := io.MultiWriter(md5h, sha1h, sha256h, sha512h)
	size, err := io.CopyBuffer(w, f, make([]byte, hashBufSize))
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot read package file", Err: err}
	}

	paragraph, err := control.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name, ok := paragraph["Package"]
	if !ok || name == "" {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "control file has no Package field"}
	}
	arch := paragraph["Architecture"]
	version, err := debversion.Parse(paragraph["Version"])
	if err != nil {
		return nil, err
	}

	md5Hex := hex.EncodeToString(md5h.Sum(nil))
	sha1Hex := hex.EncodeToString(sha1h.Sum(nil))
	sha256Hex := hex.EncodeToString(sha256h.Sum(nil))
	sha512Hex := hex.EncodeToString(sha512h.Sum(nil))

	filename := filepath.Base(path)
	filesHash := filesHash(filename, size, md5Hex, sha1Hex, sha256Hex)

	key := Key{Arch: arch, Name: name, Version: version, FilesHash: filesHash}

	pkg := &Package{
		Key:           key,
		Filename:      filename,
		CanonicalPath: canonicalPath,
		OriginalPath:  path,
		Size:          size,
		MD5:           md5Hex,
		SHA1:          sha1Hex,
		SHA256:        sha256Hex,
		SHA512:        sha512Hex,
		Control:       paragraph,
	}
	pkg.Fields = map[string]string{
		"Filename":  filename,
		"FilesHash": filesHash,
		"Key":       key.String(),
		"ShortKey":  "P" + arch + " " + name + " " + version.String(),
		"MD5sum":    md5Hex,
		"SHA1":      sha1Hex,
		"SHA256":    sha256Hex,
		"SHA512":    sha512Hex,
		"Size":      strconv.FormatInt(size, 10),
	}
	return pkg, nil
}

// filesHash computes the 64-bit FNV-1a fingerprint of filename ‖ size (8
// bytes big-endian) ‖ md5 hex ‖ sha1 hex ‖ sha256 hex, rendered as lowercase
// hex without leading zeros.
func filesHash(filename string, size int64, md5Hex, sha1Hex, sha256Hex string) string {
	h := fnv.New64a()
	h.Write([]byte(filename))
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(size))
	h.Write(sizeBuf[:])
	h.Write([]byte(md5Hex))
	h.Write([]byte(sha1Hex))
	h.Write([]byte(sha256Hex))
	return strconv.FormatUint(h.Sum64(), 16)
}
