// Package export writes mahasiswa lists to spreadsheet and JSON files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/kampus/internal/domain/model"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatExcel Format = "xlsx"
	FormatJSON  Format = "json"
)

// SheetName is the worksheet holding exported rows.
const SheetName = "Mahasiswa"

// textNumFmt is Excel's built-in "@" (text) format. NIMs keep leading zeros.
const textNumFmt = 49

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// Header lists the exported columns in order.
var Header = []string{"id", "nim", "nama", "angkatan", "prodi_id", "prodi", "foto"}

// ParseFormat accepts xlsx/excel and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write dispatches on f.
func Write(w io.Writer, f Format, data []model.Mahasiswa) error {
	switch f {
	case FormatExcel:
		return WriteExcel(w, data)
	case FormatJSON:
		return WriteJSON(w, data)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteExcel writes one header row and one row per student.
func WriteExcel(w io.Writer, data []model.Mahasiswa) error {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if err := xlsx.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	textStyle, err := xlsx.NewStyle(&excelize.Style{NumFmt: textNumFmt})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := xlsx.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for i, m := range data {
		row := i + 2
		vals := []any{
			m.ID,
			m.NIM,
			m.Nama,
			m.Angkatan,
			m.ProdiID,
			m.ProdiNama(),
			fotoValue(m.Foto),
		}
		for j, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := xlsx.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
	}

	if len(data) > 0 {
		first, _ := excelize.CoordinatesToCellName(2, 2)
		last, _ := excelize.CoordinatesToCellName(2, len(data)+1)
		if err := xlsx.SetCellStyle(SheetName, first, last, textStyle); err != nil {
			return fmt.Errorf("style nim column: %w", err)
		}
	}

	if err := xlsx.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func fotoValue(foto *string) string {
	if foto == nil {
		return ""
	}
	return *foto
}
