package params

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/model"
)

const renderedSuffix = ".parameters.json"

// Request identifies one step of one unit. Unit must already be descended
// to the step (frame, application and step set on its context).
type Request struct {
	Unit deployctx.FlattenedDeployment
	Step *model.Step
}

// Prepared holds the files handed to the backend. ParametersPath is empty
// when the step takes no parameter file.
type Prepared struct {
	TemplatePath   string
	ParametersPath string
}

// Preparer resolves templates and parameter files for steps.
type Preparer struct {
	cfg    *model.Configuration
	outDir string
}

// NewPreparer returns a Preparer writing rendered parameter files under
// outDir.
func NewPreparer(cfg *model.Configuration, outDir string) *Preparer {
	return &Preparer{cfg: cfg, outDir: outDir}
}

// Prepare returns the template and parameter file paths for req. A
// pre-generated parameter file registered in the configuration wins over
// rendering the step's parameter source.
func (p *Preparer) Prepare(ctx context.Context, req Request) (Prepared, error) {
	logger := ctxlog.FromContext(ctx)

	if err := ctx.Err(); err != nil {
		return Prepared{}, err
	}
	if err := requireFile("template", req.Step.Template); err != nil {
		return Prepared{}, err
	}
	out := Prepared{TemplatePath: req.Step.Template}

	if generated, ok := p.cfg.ParameterFile(req.Unit.ParameterFileKey()); ok {
		if err := requireFile("parameter file", generated); err != nil {
			return Prepared{}, err
		}
		logger.Debug("Using generated parameter file.", "path", generated)
		out.ParametersPath = generated
		return out, nil
	}

	if req.Step.Parameters == "" {
		return out, nil
	}
	if err := requireFile("parameter source", req.Step.Parameters); err != nil {
		return Prepared{}, err
	}

	region := req.Unit.Data.Region(req.Step.Region)
	dst := filepath.Join(append([]string{p.outDir}, req.Unit.Context.Iteration.Segments()...)...) + renderedSuffix
	if err := render(req.Step.Parameters, dst, buildEvalContext(p.cfg, req.Unit, region)); err != nil {
		return Prepared{}, err
	}
	logger.Debug("Rendered parameter file.", "source", req.Step.Parameters, "path", dst)

	out.ParametersPath = dst
	return out, nil
}

func requireFile(kind, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s %s is a directory", kind, path)
	}
	return nil
}
