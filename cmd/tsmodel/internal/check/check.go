package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kishek/ts-model-toolkit/internal/discover"
	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/parser"
)

// ErrParseFailed is returned by check when a declaration failed to parse.
var ErrParseFailed = errors.New("model has parse failures")

type Cmd struct {
	Src      string `help:"Directory holding the model." default:"src" type:"path"`
	TSConfig string `help:"tsconfig.json selecting the model files." name:"tsconfig" type:"path"`
}

func (c *Cmd) Run(ctx context.Context, logger *zap.Logger) error {
	return c.check(ctx, os.Stdout)
}

func (c *Cmd) check(ctx context.Context, w io.Writer) error {
	proj, err := load(ctx, c.Src, c.TSConfig)
	if err != nil {
		return err
	}

	failures := 0
	for _, warning := range proj.Warnings() {
		fmt.Fprintln(w, warning.String())
		if warning.Code == ir.WarnParseFailed {
			failures++
		}
	}
	fmt.Fprintf(w, "%d files, %d structures, %d warnings\n", len(proj.Files()), len(proj.All()), len(proj.Warnings()))
	if failures > 0 {
		return errors.Wrapf(ErrParseFailed, "%d declarations", failures)
	}
	return nil
}

type IRCmd struct {
	Src      string `help:"Directory holding the model." default:"src" type:"path"`
	TSConfig string `help:"tsconfig.json selecting the model files." name:"tsconfig" type:"path"`
	File     string `arg:"" optional:"" help:"Model file to print (default: every file)." type:"path"`
}

func (c *IRCmd) Run(ctx context.Context, logger *zap.Logger) error {
	return c.dump(ctx, os.Stdout)
}

// dump prints the structures as a JSON array. Declarations that failed to
// parse are omitted; check reports them.
func (c *IRCmd) dump(ctx context.Context, w io.Writer) error {
	proj, err := load(ctx, c.Src, c.TSConfig)
	if err != nil {
		return err
	}

	structures := proj.All()
	if c.File != "" {
		abs, err := filepath.Abs(c.File)
		if err != nil {
			return err
		}
		structures = structures[:0:0]
		for _, s := range proj.Structures(abs) {
			if s != nil {
				structures = append(structures, s)
			}
		}
		if len(structures) == 0 {
			return errors.WithHint(
				errors.Newf("no structures in %s", c.File),
				"the file must be a model file below --src")
		}
	}

	data, err := json.MarshalIndent(structures, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode structures")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func load(ctx context.Context, src, tsconfig string) (*parser.Project, error) {
	files, err := discover.Files(ctx, discover.Options{Source: src, TSConfig: tsconfig})
	if err != nil {
		return nil, err
	}
	return parser.New().ParseProject(ctx, files, src)
}
