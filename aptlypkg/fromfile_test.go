package aptlypkg

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

// writeMockDeb builds a minimal but structurally valid .deb, following the
// same ar-header-by-hand technique used elsewhere in this codebase for
// constructing package fixtures without shelling out to dpkg-deb.
func writeMockDeb(t *testing.T, dir, name, controlText string, dataBody []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	f.WriteString("!<arch>\n")
	writeEntry := func(entryName string, data []byte) {
		header := pad(entryName, 16) + pad("0", 12) + pad("0", 6) + pad("0", 6) + pad("100644", 8) + pad(itoa(len(data)), 10) + "`\n"
		f.WriteString(header)
		f.Write(data)
		if len(data)%2 != 0 {
			f.WriteString("\n")
		}
	}

	writeEntry("debian-binary", []byte("2.0\n"))

	var ctrlBuf bytes.Buffer
	gw := gzip.NewWriter(&ctrlBuf)
	tw := tar.NewWriter(gw)
	tw.WriteHeader(&tar.Header{Name: "./control", Mode: 0644, Size: int64(len(controlText))})
	tw.Write([]byte(controlText))
	tw.Close()
	gw.Close()
	writeEntry("control.tar.gz", ctrlBuf.Bytes())

	var dataBuf bytes.Buffer
	dgw := gzip.NewWriter(&dataBuf)
	dtw := tar.NewWriter(dgw)
	dtw.WriteHeader(&tar.Header{Name: "./usr/bin/x", Mode: 0755, Size: int64(len(dataBody))})
	dtw.Write(dataBody)
	dtw.Close()
	dgw.Close()
	writeEntry("data.tar.gz", dataBuf.Bytes())

	return path
}

func pad(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

const testControl = "Package: aptly\nVersion: 1.3.0+ds1-2\nArchitecture: amd64\nMaintainer: Test <t@example.com>\nDescription: test\n"

func TestFromFileStableFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := writeMockDeb(t, dir, "aptly_1.3.0+ds1-2_amd64.deb", testControl, []byte("hello"))

	p1, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	p2, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile (2nd read): %v", err)
	}
	if p1.Key.FilesHash != p2.Key.FilesHash {
		t.Errorf("expected stable FilesHash, got %q then %q", p1.Key.FilesHash, p2.Key.FilesHash)
	}
	if p1.Key.Name != "aptly" || p1.Key.Arch != "amd64" {
		t.Errorf("unexpected key: %+v", p1.Key)
	}
	if p1.Key.Version.String() != "1.3.0+ds1-2" {
		t.Errorf("unexpected version: %s", p1.Key.Version.String())
	}
}

func TestFromFileRenameChangesHash(t *testing.T) {
	dir := t.TempDir()
	p1 := writeMockDeb(t, dir, "a.deb", testControl, []byte("hello"))
	p2 := writeMockDeb(t, dir, "b.deb", testControl, []byte("hello"))

	pkg1, err := FromFile(p1)
	if err != nil {
		t.Fatal(err)
	}
	pkg2, err := FromFile(p2)
	if err != nil {
		t.Fatal(err)
	}
	if pkg1.Key.FilesHash == pkg2.Key.FilesHash {
		t.Error("expected renaming the file to change FilesHash")
	}
}

func TestFromFileContentChangeChangesHash(t *testing.T) {
	dir := t.TempDir()
	p1 := writeMockDeb(t, dir, "same.deb", testControl, []byte("hello"))
	pkg1, err := FromFile(p1)
	if err != nil {
		t.Fatal(err)
	}

	dir2 := t.TempDir()
	p2 := writeMockDeb(t, dir2, "same.deb", testControl, []byte("different content"))
	pkg2, err := FromFile(p2)
	if err != nil {
		t.Fatal(err)
	}

	if pkg1.SHA256 == pkg2.SHA256 {
		t.Error("expected different data contents to change SHA256")
	}
	if pkg1.Key.FilesHash == pkg2.Key.FilesHash {
		t.Error("expected different contents to change FilesHash")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeMockDeb(t, dir, "aptly_1.3.0+ds1-2_amd64.deb", testControl, []byte("hello"))
	pkg, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	k := pkg.Key
	k.Prefix = "stretch"
	s := k.String()
	parsed, err := FromKey(s)
	if err != nil {
		t.Fatalf("FromKey(%q): %v", s, err)
	}
	if parsed.String() != s {
		t.Errorf("round trip failed: %q != %q", parsed.String(), s)
	}
}

func TestFromDirectRef(t *testing.T) {
	name, version, arch, err := FromDirectRef("aptly_1.3.0+ds1-2_amd64")
	if err != nil {
		t.Fatal(err)
	}
	if name != "aptly" || version != "1.3.0+ds1-2" || arch != "amd64" {
		t.Errorf("got %s %s %s", name, version, arch)
	}
}
