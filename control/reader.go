package control

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	xz "github.com/smira/go-xz"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
)

// Paragraph is a parsed control-file stanza: field name to value.
type Paragraph map[string]string

// ReadFile opens the .deb at path and returns its parsed control paragraph.
func ReadFile(path string) (Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot open package file", Err: err}
	}
	defer f.Close()

	text, err := ExtractText(f)
	if err != nil {
		if _, ok := err.(*aptlyerr.LocalIOError); ok {
			return nil, err
		}
		return nil, &aptlyerr.LocalIOError{Path: path, Msg: "cannot read control member", Err: err}
	}
	return Parse(text)
}

// ExtractText finds the first ar member named "control.tar*" in r and
// returns the text of its "./control" (or "control") tar member.
func ExtractText(r io.Reader) (string, error) {
	arReader := ar.NewReader(r)
	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(header.Name, "control.tar") {
			continue
		}

		var tr io.Reader = arReader
		switch {
		case strings.HasSuffix(header.Name, ".gz"):
			gz, err := gzip.NewReader(arReader)
			if err != nil {
				return "", err
			}
			defer gz.Close()
			tr = gz
		case strings.HasSuffix(header.Name, ".bz2"):
			tr = bzip2.NewReader(arReader)
		case strings.HasSuffix(header.Name, ".xz"):
			xzr, err := xz.NewReader(arReader)
			if err != nil {
				return "", err
			}
			tr = xzr
		case strings.HasSuffix(header.Name, ".zst"):
			zr, err := zstd.NewReader(arReader)
			if err != nil {
				return "", err
			}
			defer zr.Close()
			tr = zr
		}

		tarReader := tar.NewReader(tr)
		for {
			th, err := tarReader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", err
			}
			if filepath.Base(th.Name) == "control" {
				var buf bytes.Buffer
				if _, err := io.Copy(&buf, tarReader); err != nil {
					return "", err
				}
				return buf.String(), nil
			}
		}
	}
	return "", &aptlyerr.LocalIOError{Msg: "no control.tar member found"}
}

// Parse decodes an RFC-822-style control paragraph. A field begins at
// column 0 as "Name: value"; lines starting with whitespace continue the
// previous field. A blank line terminates the paragraph (trailing content
// is ignored; callers pass just the control member's text).
//
// Multi-line fields preserve the exact form the server canonicalizes to:
// once a continuation line is seen, the field's value is rewritten so that
// every physical line, including the first, carries one leading space
// and a trailing newline. Fields with no continuation keep their plain,
// unprefixed, non-terminated single-line value.
func Parse(text string) (Paragraph, error) {
	p := make(Paragraph)

	var currentKey, currentValue string
	multiline := false

	flush := func() {
		if currentKey != "" {
			p[currentKey] = currentValue
		}
		currentKey, currentValue = "", ""
		multiline = false
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if currentKey == "" {
				return nil, &aptlyerr.ParseError{
					Kind: "control file", Input: line,
					Msg: "continuation line before any field",
				}
			}
			content := strings.TrimLeft(line, " \t")
			if !multiline {
				currentValue = " " + currentValue + "\n"
				multiline = true
			}
			currentValue += " " + content + "\n"
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			return nil, &aptlyerr.ParseError{
				Kind: "control file", Input: line,
				Msg: "malformed line: no colon in key position",
			}
		}
		flush()
		currentKey = line[:idx]
		currentValue = strings.TrimSpace(line[idx+1:])
	}
	flush()

	return p, nil
}
