package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/valyala/fasthttp"

	"github.com/okian/kampus/internal/domain/model"
)

const (
	photoField      = "foto"
	photoUploadsDir = "/uploads/mahasiswa-fotos/"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// UploadMahasiswaFoto sends the photo read from r as the multipart field
// "foto" and returns the student with its new photo URL.
func (c *Client) UploadMahasiswaFoto(ctx context.Context, id int, filename string, r io.Reader) (*model.Mahasiswa, error) {
	p := mahasiswaItemPath(id) + "/" + photoField

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read photo: %w", ErrEncode, err)
	}
	body, contentType, err := photoForm(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrEncode, fasthttp.MethodPost, p, err)
	}

	var out model.Mahasiswa
	cl := call{op: OpUploadFoto, method: fasthttp.MethodPost, path: p, body: body, contentType: contentType}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMahasiswaFotoFile uploads the file at filePath.
func (c *Client) UploadMahasiswaFotoFile(ctx context.Context, id int, filePath string) (*model.Mahasiswa, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	return c.UploadMahasiswaFoto(ctx, id, filepath.Base(filePath), f)
}

// photoForm builds a multipart body holding data under the "foto" field. The
// part's Content-Type is sniffed from the bytes so the backend's image
// filters see the real type regardless of the file extension.
func photoForm(filename string, data []byte) ([]byte, string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		name = photoField
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, photoField, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mimetype.Detect(data).String())

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ResolvePhotoURL returns the stored photo value unchanged when it is set and
// "" when the student has no photo. The backend stores full URLs.
func ResolvePhotoURL(foto *string) string {
	if foto == nil {
		return ""
	}
	return *foto
}

// PhotoURL is ResolvePhotoURL for backends that store bare filenames: when a
// static files URL is configured, a value that is not an absolute URL is
// served from its uploads directory.
func (c *Client) PhotoURL(foto *string) string {
	v := ResolvePhotoURL(foto)
	if v == "" || c.staticFilesURL == "" || isAbsoluteURL(v) {
		return v
	}
	return c.staticFilesURL + photoUploadsDir + url.PathEscape(path.Base(v))
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
