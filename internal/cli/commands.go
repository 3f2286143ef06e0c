package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/okian/kampus/internal/adapters/export"
	"github.com/okian/kampus/internal/domain/model"
	"github.com/okian/kampus/pkg/logger"
)

const exportFileMode = 0o644

func (r *Runner) prodi(ctx context.Context, args []string) error {
	pos, err := parse(r.flagSet("prodi"), args)
	if err != nil {
		return err
	}
	if err := wantArgs("prodi", pos); err != nil {
		return err
	}

	out, err := r.backend.ListProdi(ctx)
	if err != nil {
		return err
	}
	return r.print(out)
}

// filterFlags binds the ListQuery filters shared by list and export.
func filterFlags(fs *flag.FlagSet, q *model.ListQuery) {
	fs.StringVar(&q.Search, "search", "", "match nim or nama")
	fs.IntVar(&q.ProdiID, "prodi", 0, "study program id")
	fs.IntVar(&q.Angkatan, "angkatan", 0, "intake year")
	fs.StringVar(&q.SortBy, "sort-by", "", "sort field")
	fs.StringVar(&q.SortOrder, "order", "", "asc or desc")
}

func (r *Runner) list(ctx context.Context, args []string) error {
	var q model.ListQuery
	fs := r.flagSet("list")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.Limit, "limit", 0, "page size")
	filterFlags(fs, &q)

	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("list", pos); err != nil {
		return err
	}

	page, err := r.backend.ListMahasiswa(ctx, q)
	if err != nil {
		return err
	}
	return r.print(page)
}

func (r *Runner) get(ctx context.Context, args []string) error {
	id, err := r.idOnly("get", args)
	if err != nil {
		return err
	}
	m, err := r.backend.GetMahasiswa(ctx, id)
	if err != nil {
		return err
	}
	return r.print(m)
}

func (r *Runner) create(ctx context.Context, args []string) error {
	var in model.CreateMahasiswa
	fs := r.flagSet("create")
	fs.StringVar(&in.NIM, "nim", "", "student number")
	fs.StringVar(&in.Nama, "nama", "", "full name")
	fs.IntVar(&in.Angkatan, "angkatan", 0, "intake year")
	fs.IntVar(&in.ProdiID, "prodi", 0, "study program id")

	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("create", pos); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: create: %w", ErrUsage, err)
	}

	m, err := r.backend.CreateMahasiswa(ctx, in)
	if err != nil {
		return err
	}
	return r.print(m)
}

func (r *Runner) update(ctx context.Context, args []string) error {
	var (
		nim, nama         string
		angkatan, prodiID int
	)
	fs := r.flagSet("update")
	fs.StringVar(&nim, "nim", "", "student number")
	fs.StringVar(&nama, "nama", "", "full name")
	fs.IntVar(&angkatan, "angkatan", 0, "intake year")
	fs.IntVar(&prodiID, "prodi", 0, "study program id")

	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("update", pos, "id"); err != nil {
		return err
	}
	id, err := parseID("update", pos[0])
	if err != nil {
		return err
	}

	// Only explicitly given flags end up in the patch.
	var in model.UpdateMahasiswa
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nim":
			in.NIM = &nim
		case "nama":
			in.Nama = &nama
		case "angkatan":
			in.Angkatan = &angkatan
		case "prodi":
			in.ProdiID = &prodiID
		}
	})
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: update: %w", ErrUsage, err)
	}

	m, err := r.backend.UpdateMahasiswa(ctx, id, in)
	if err != nil {
		return err
	}
	return r.print(m)
}

func (r *Runner) delete(ctx context.Context, args []string) error {
	id, err := r.idOnly("delete", args)
	if err != nil {
		return err
	}
	return r.backend.DeleteMahasiswa(ctx, id)
}

func (r *Runner) upload(ctx context.Context, args []string) error {
	pos, err := parse(r.flagSet("upload"), args)
	if err != nil {
		return err
	}
	if err := wantArgs("upload", pos, "id", "file"); err != nil {
		return err
	}
	id, err := parseID("upload", pos[0])
	if err != nil {
		return err
	}

	m, err := r.backend.UploadMahasiswaFotoFile(ctx, id, pos[1])
	if err != nil {
		return err
	}
	return r.print(m)
}

func (r *Runner) photoURL(ctx context.Context, args []string) error {
	id, err := r.idOnly("photo-url", args)
	if err != nil {
		return err
	}
	m, err := r.backend.GetMahasiswa(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.stdout, r.backend.PhotoURL(m.Foto))
	return err
}

func (r *Runner) export(ctx context.Context, args []string) error {
	var (
		q            model.ListQuery
		format, path string
	)
	fs := r.flagSet("export")
	fs.StringVar(&format, "format", string(export.FormatExcel), "xlsx or json")
	fs.StringVar(&path, "o", "", `output file, "-" for stdout (default mahasiswa.<format>)`)
	fs.IntVar(&q.Limit, "limit", 0, "page size used while fetching")
	filterFlags(fs, &q)

	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("export", pos); err != nil {
		return err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return fmt.Errorf("%w: export: %w", ErrUsage, err)
	}
	if path == "" {
		path = "mahasiswa." + string(f)
	}

	if path == "-" {
		_, err := r.svc.Export(ctx, q, f, r.stdout)
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, exportFileMode)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	n, err := r.svc.Export(ctx, q, f, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	r.logger.Info(ctx, "export written", logger.String("file", path), logger.Int("records", n))
	_, err = fmt.Fprintf(r.stdout, "wrote %d records to %s\n", n, path)
	return err
}

func (r *Runner) idOnly(cmd string, args []string) (int, error) {
	pos, err := parse(r.flagSet(cmd), args)
	if err != nil {
		return 0, err
	}
	if err := wantArgs(cmd, pos, "id"); err != nil {
		return 0, err
	}
	return parseID(cmd, pos[0])
}
