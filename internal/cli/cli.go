// Package cli implements the kampus command line on top of the backend client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/kampus/internal/adapters/export"
	"github.com/okian/kampus/internal/adapters/http/client"
	service "github.com/okian/kampus/internal/app"
	"github.com/okian/kampus/internal/domain/model"
	"github.com/okian/kampus/pkg/logger"
)

// ErrUsage marks invalid command lines. The message says what was wrong.
var ErrUsage = errors.New("usage error")

// Backend is the subset of *client.Client the commands use.
type Backend interface {
	service.MahasiswaLister
	ListProdi(ctx context.Context) ([]model.Prodi, error)
	GetMahasiswa(ctx context.Context, id int) (*model.Mahasiswa, error)
	CreateMahasiswa(ctx context.Context, in model.CreateMahasiswa) (*model.Mahasiswa, error)
	UpdateMahasiswa(ctx context.Context, id int, in model.UpdateMahasiswa) (*model.Mahasiswa, error)
	DeleteMahasiswa(ctx context.Context, id int) error
	UploadMahasiswaFotoFile(ctx context.Context, id int, path string) (*model.Mahasiswa, error)
	PhotoURL(foto *string) string
}

var _ Backend = (*client.Client)(nil)

// Runner dispatches commands.
type Runner struct {
	backend Backend
	svc     *service.Service
	stdout  io.Writer
	stderr  io.Writer
	logger  logger.Logger
}

// New returns a Runner that prints results to stdout and usage to stderr.
func New(b Backend, svc *service.Service, stdout, stderr io.Writer, l logger.Logger) *Runner {
	return &Runner{backend: b, svc: svc, stdout: stdout, stderr: stderr, logger: l}
}

type command struct {
	name    string
	args    string
	summary string
	run     func(r *Runner, ctx context.Context, args []string) error
}

var commands = []command{
	{"prodi", "", "list study programs", (*Runner).prodi},
	{"list", "[-page N] [-limit N] [-search S] [-prodi ID] [-angkatan Y] [-sort-by F] [-order asc|desc]", "list one page of students", (*Runner).list},
	{"get", "<id>", "show one student", (*Runner).get},
	{"create", "-nim NIM -nama NAMA -prodi ID [-angkatan Y]", "create a student", (*Runner).create},
	{"update", "<id> [-nim NIM] [-nama NAMA] [-prodi ID] [-angkatan Y]", "change the given fields of a student", (*Runner).update},
	{"delete", "<id>", "delete a student", (*Runner).delete},
	{"upload", "<id> <file>", "upload a student photo", (*Runner).upload},
	{"photo-url", "<id>", "print the displayable photo URL of a student", (*Runner).photoURL},
	{"export", "[-format xlsx|json] [-o FILE] [list filters]", "write every matching student to a file", (*Runner).export},
}

// Run executes the command named by args[0].
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.usage()
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "-help", "--help":
		r.usage()
		return nil
	}

	for _, c := range commands {
		if c.name == name {
			r.logger.Debug(ctx, "running command", logger.String("command", name))
			return c.run(r, ctx, rest)
		}
	}
	r.usage()
	return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
}

func (r *Runner) usage() {
	fmt.Fprintln(r.stderr, "Usage: kampus <command> [flags]")
	fmt.Fprintln(r.stderr)
	fmt.Fprintln(r.stderr, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(r.stderr, "  %-10s %s\n", c.name, c.summary)
		if c.args != "" {
			fmt.Fprintf(r.stderr, "  %-10s   %s %s\n", "", c.name, c.args)
		}
	}
	fmt.Fprintf(r.stderr, "  %-10s %s\n", "help", "show this message")
	fmt.Fprintln(r.stderr)
	fmt.Fprintln(r.stderr, "Configuration comes from KAMPUS_* environment variables, .env and KAMPUS_CONFIG.")
}

func (r *Runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.stderr)
	return fs
}

// parse parses flags, allowing them before or after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func parseID(cmd, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s: invalid id %q", ErrUsage, cmd, s)
	}
	return id, nil
}

func wantArgs(cmd string, got []string, names ...string) error {
	if len(got) != len(names) {
		return fmt.Errorf("%w: %s expects %d argument(s): %v", ErrUsage, cmd, len(names), names)
	}
	return nil
}

func (r *Runner) print(v any) error {
	return export.WriteJSON(r.stdout, v)
}
