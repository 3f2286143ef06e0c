// Package model contains the DTOs exchanged with the mahasiswa backend.
package model

import (
	"errors"
	"strings"
	"time"
)

// Prodi is a study program. Read-only from the client's point of view.
type Prodi struct {
	ID   int    `json:"id"`
	Nama string `json:"nama"`
}

// Mahasiswa is a student record as returned by the backend.
type Mahasiswa struct {
	ID       int    `json:"id"`
	NIM      string `json:"nim"`
	Nama     string `json:"nama"`
	Angkatan int    `json:"angkatan,omitempty"`
	ProdiID  int    `json:"prodiId"`
	Prodi    *Prodi `json:"prodi,omitempty"`

	// Foto holds the full photo URL, or nil when no photo was uploaded.
	Foto *string `json:"foto"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProdiNama returns the embedded program name, if the backend included it.
func (m Mahasiswa) ProdiNama() string {
	if m.Prodi == nil {
		return ""
	}
	return m.Prodi.Nama
}

// CreateMahasiswa is the POST /mahasiswa payload.
type CreateMahasiswa struct {
	NIM      string `json:"nim"`
	Nama     string `json:"nama"`
	Angkatan int    `json:"angkatan,omitempty"`
	ProdiID  int    `json:"prodiId"`
}

// Validation errors for payloads built by callers.
var (
	ErrMissingNIM   = errors.New("nim is required")
	ErrMissingNama  = errors.New("nama is required")
	ErrInvalidProdi = errors.New("prodiId must be positive")
	ErrEmptyUpdate  = errors.New("update has no fields")
)

// Validate checks the fields the backend requires.
func (c CreateMahasiswa) Validate() error {
	switch {
	case strings.TrimSpace(c.NIM) == "":
		return ErrMissingNIM
	case strings.TrimSpace(c.Nama) == "":
		return ErrMissingNama
	case c.ProdiID <= 0:
		return ErrInvalidProdi
	}
	return nil
}

// UpdateMahasiswa is the PATCH /mahasiswa/{id} payload. Nil fields are left
// out of the request body and keep their stored value.
type UpdateMahasiswa struct {
	NIM      *string `json:"nim,omitempty"`
	Nama     *string `json:"nama,omitempty"`
	Angkatan *int    `json:"angkatan,omitempty"`
	ProdiID  *int    `json:"prodiId,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (u UpdateMahasiswa) IsEmpty() bool {
	return u.NIM == nil && u.Nama == nil && u.Angkatan == nil && u.ProdiID == nil
}

// Validate rejects empty patches and blank required fields.
func (u UpdateMahasiswa) Validate() error {
	switch {
	case u.IsEmpty():
		return ErrEmptyUpdate
	case u.NIM != nil && strings.TrimSpace(*u.NIM) == "":
		return ErrMissingNIM
	case u.Nama != nil && strings.TrimSpace(*u.Nama) == "":
		return ErrMissingNama
	case u.ProdiID != nil && *u.ProdiID <= 0:
		return ErrInvalidProdi
	}
	return nil
}

// ListQuery shapes GET /mahasiswa. Zero values are treated as absent and are
// not sent.
type ListQuery struct {
	Page      int    `schema:"page,omitempty"`
	Limit     int    `schema:"limit,omitempty"`
	Search    string `schema:"search,omitempty"`
	ProdiID   int    `schema:"prodiId,omitempty"`
	Angkatan  int    `schema:"angkatan,omitempty"`
	SortBy    string `schema:"sortBy,omitempty"`
	SortOrder string `schema:"sortOrder,omitempty"`
}

// MahasiswaPage is one page of GET /mahasiswa.
type MahasiswaPage struct {
	Data        []Mahasiswa `json:"data"`
	Count       int         `json:"count"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
}

// HasNext reports whether a later page exists.
func (p MahasiswaPage) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}
