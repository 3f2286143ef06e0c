package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/kampus/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func setBackend(t *testing.T, url string) {
	t.Setenv("KAMPUS_API_URL", url)
	t.Setenv("KAMPUS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("KAMPUS_CONFIG", "")
	t.Setenv("KAMPUS_LOG_LEVEL", "error")
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/data/prodi":
			_, _ = io.WriteString(w, `[{"id":1,"nama":"Informatika"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"statusCode":404,"message":"Mahasiswa not found"}`)
		}
	}))
	defer srv.Close()
	setBackend(t, srv.URL+"/api")

	Convey("Given the command line entry point", t, func() {
		var stdout, stderr bytes.Buffer
		ctx := context.Background()

		Convey("When listing prodi", func() {
			metricsFile := filepath.Join(t.TempDir(), "kampus.prom")
			code := run(ctx, []string{"-metrics-file", metricsFile, "prodi"}, &stdout, &stderr)

			Convey("Then the programs are printed as JSON", func() {
				So(code, ShouldEqual, exitOK)
				var out []model.Prodi
				So(json.Unmarshal(stdout.Bytes(), &out), ShouldBeNil)
				So(out, ShouldResemble, []model.Prodi{{ID: 1, Nama: "Informatika"}})
			})

			Convey("And the request shows up in the metrics file", func() {
				b, err := os.ReadFile(metricsFile)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `kampus_client_requests_total{method="GET",operation="list_prodi",status_code="200"}`)
			})
		})

		Convey("When the student does not exist", func() {
			code := run(ctx, []string{"get", "42"}, &stdout, &stderr)

			Convey("Then the command fails with the backend status logged", func() {
				So(code, ShouldEqual, exitFailure)
				So(stdout.Len(), ShouldEqual, 0)
				So(stderr.String(), ShouldContainSubstring, "status=404")
			})

			Convey("And the failure is logged once", func() {
				So(strings.Count(stderr.String(), "level=ERROR"), ShouldEqual, 1)
				So(stderr.String(), ShouldContainSubstring, "backend request failed")
				So(stderr.String(), ShouldNotContainSubstring, "command failed")
			})
		})

		Convey("When the command is unknown", func() {
			code := run(ctx, []string{"enroll"}, &stdout, &stderr)
			So(code, ShouldEqual, exitUsage)
		})

		Convey("When a global flag is unknown", func() {
			code := run(ctx, []string{"-bogus", "prodi"}, &stdout, &stderr)
			So(code, ShouldEqual, exitUsage)
		})
	})
}

func TestRun_InvalidConfig(t *testing.T) {
	Convey("Given an unsupported API URL scheme", t, func() {
		setBackend(t, "ftp://files.example.com")
		var stdout, stderr bytes.Buffer

		code := run(context.Background(), []string{"prodi"}, &stdout, &stderr)

		Convey("Then startup fails before any request", func() {
			So(code, ShouldEqual, exitFailure)
			So(stderr.String(), ShouldContainSubstring, "failed to load config")
		})
	})
}
