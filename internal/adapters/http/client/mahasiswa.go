package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/valyala/fasthttp"

	"github.com/okian/kampus/internal/domain/model"
)

const (
	prodiPath     = "/prodi"
	mahasiswaPath = "/mahasiswa"
)

// gorilla/schema caches struct metadata behind a lock; one encoder is shared.
var queryEncoder = schema.NewEncoder() //nolint:gochecknoglobals // stateless apart from its cache

func mahasiswaItemPath(id int) string {
	return mahasiswaPath + "/" + strconv.Itoa(id)
}

// encodeQuery turns q into URL parameters, leaving out zero-valued fields.
func encodeQuery(q model.ListQuery) (url.Values, error) {
	values := url.Values{}
	if err := queryEncoder.Encode(q, values); err != nil {
		return nil, fmt.Errorf("%w: list query: %w", ErrEncode, err)
	}
	return values, nil
}

// ListProdi fetches every study program.
func (c *Client) ListProdi(ctx context.Context) ([]model.Prodi, error) {
	var out []model.Prodi
	cl := call{op: OpListProdi, method: fasthttp.MethodGet, path: prodiPath}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMahasiswa fetches one page of students filtered by q.
func (c *Client) ListMahasiswa(ctx context.Context, q model.ListQuery) (*model.MahasiswaPage, error) {
	values, err := encodeQuery(q)
	if err != nil {
		return nil, err
	}

	var out model.MahasiswaPage
	cl := call{op: OpListMahasiswa, method: fasthttp.MethodGet, path: mahasiswaPath, query: values}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMahasiswa fetches one student. A missing id yields an error matching
// ErrNotFound.
func (c *Client) GetMahasiswa(ctx context.Context, id int) (*model.Mahasiswa, error) {
	var out model.Mahasiswa
	cl := call{op: OpGetMahasiswa, method: fasthttp.MethodGet, path: mahasiswaItemPath(id)}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMahasiswa creates a student and returns it with its assigned id.
func (c *Client) CreateMahasiswa(ctx context.Context, in model.CreateMahasiswa) (*model.Mahasiswa, error) {
	cl, err := jsonCall(OpCreateMahasiswa, fasthttp.MethodPost, mahasiswaPath, in)
	if err != nil {
		return nil, err
	}

	var out model.Mahasiswa
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMahasiswa patches the fields set in in.
func (c *Client) UpdateMahasiswa(ctx context.Context, id int, in model.UpdateMahasiswa) (*model.Mahasiswa, error) {
	cl, err := jsonCall(OpUpdateMahasiswa, fasthttp.MethodPatch, mahasiswaItemPath(id), in)
	if err != nil {
		return nil, err
	}

	var out model.Mahasiswa
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMahasiswa removes a student. Any response body is ignored.
func (c *Client) DeleteMahasiswa(ctx context.Context, id int) error {
	cl := call{op: OpDeleteMahasiswa, method: fasthttp.MethodDelete, path: mahasiswaItemPath(id)}
	return c.do(ctx, cl, nil)
}
