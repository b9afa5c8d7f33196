package aptlyclient

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
)

// FilesUpload uploads the package files at paths into the server-side
// upload directory dir (created if absent), returning the server's list of
// relative file names now present in it.
func (c *Client) FilesUpload(ctx context.Context, dir string, paths []string) ([]string, error) {
	files := make([]multipartFile, 0, len(paths))
	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, &aptlyerr.LocalIOError{Path: p, Msg: "cannot open file for upload", Err: err}
		}
		opened = append(opened, f)
		files = append(files, multipartFile{fieldName: "file", filename: filepath.Base(p), r: f})
	}

	path := "/api/files/" + url.PathEscape(dir)
	var result []string
	err := c.do(ctx, http.MethodPost, path, requestOpts{multipart: files}, &result)
	return result, err
}

// FilesListDirs lists every upload directory currently on the server.
func (c *Client) FilesListDirs(ctx context.Context) ([]string, error) {
	var result []string
	err := c.do(ctx, http.MethodGet, "/api/files", requestOpts{}, &result)
	return result, err
}

// FilesList lists the files present in upload directory dir.
func (c *Client) FilesList(ctx context.Context, dir string) ([]string, error) {
	var result []string
	err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(dir), requestOpts{}, &result)
	return result, err
}

// FilesDeleteDir removes upload directory dir and everything in it.
func (c *Client) FilesDeleteDir(ctx context.Context, dir string) error {
	return c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(dir), requestOpts{}, nil)
}

// FilesDeleteFile removes a single file from upload directory dir.
func (c *Client) FilesDeleteFile(ctx context.Context, dir, file string) error {
	path := "/api/files/" + url.PathEscape(dir) + "/" + url.PathEscape(file)
	return c.do(ctx, http.MethodDelete, path, requestOpts{}, nil)
}
