package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/kampus/internal/adapters/export"
	"github.com/okian/kampus/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() []model.Mahasiswa {
	foto := "https://blob.example.com/a.jpg"
	return []model.Mahasiswa{
		{ID: 1, NIM: "0220101", Nama: "Ayu", Angkatan: 2022, ProdiID: 2, Prodi: &model.Prodi{ID: 2, Nama: "Informatika"}, Foto: &foto},
		{ID: 2, NIM: "0220102", Nama: "Bayu", ProdiID: 3},
	}
}

func TestParseFormat(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := export.ParseFormat("Excel")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, export.FormatExcel)

		f, err = export.ParseFormat(" json ")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, export.FormatJSON)

		_, err = export.ParseFormat("csv")
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestWriteExcel(t *testing.T) {
	Convey("Given two students", t, func() {
		var buf bytes.Buffer

		Convey("When writing xlsx", func() {
			So(export.Write(&buf, export.FormatExcel, sample()), ShouldBeNil)

			Convey("Then the workbook holds a header and one row per student", func() {
				f, err := excelize.OpenReader(&buf)
				So(err, ShouldBeNil)
				defer f.Close()

				rows, err := f.GetRows(export.SheetName)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0], ShouldResemble, export.Header)
				So(rows[1][1], ShouldEqual, "0220101")
				So(rows[1][5], ShouldEqual, "Informatika")
				So(rows[1][6], ShouldEqual, "https://blob.example.com/a.jpg")
				So(rows[2][2], ShouldEqual, "Bayu")
			})
		})

		Convey("When writing an empty list", func() {
			So(export.WriteExcel(&buf, nil), ShouldBeNil)

			Convey("Then only the header is present", func() {
				f, err := excelize.OpenReader(&buf)
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := f.GetRows(export.SheetName)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
			})
		})
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given two students", t, func() {
		var buf bytes.Buffer
		So(export.Write(&buf, export.FormatJSON, sample()), ShouldBeNil)

		var back []model.Mahasiswa
		So(json.Unmarshal(buf.Bytes(), &back), ShouldBeNil)
		So(back, ShouldHaveLength, 2)
		So(back[0].NIM, ShouldEqual, "0220101")
		So(back[1].Foto, ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "\n  ")
	})
}
