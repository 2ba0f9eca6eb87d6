package params

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/fsutil"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/view"
	"github.com/zclconf/go-cty/cty"
)

// ManifestName is the file Generate writes next to the rendered files. It
// holds parameter_file blocks and is picked up by the configuration loader
// when the output directory is part of the configuration path.
const ManifestName = "parameter_files.hcl"

// Generate renders the parameter source of every step reachable from the
// release context into outDir and writes a manifest registering them. A
// subscription with several locations renders against its first location.
func Generate(ctx context.Context, cfg *model.Configuration, dctx deployctx.DeploymentContext, outDir string) (map[model.ParameterFileKey]string, error) {
	logger := ctxlog.FromContext(ctx)

	rv, err := view.NewReleaseView(cfg, dctx)
	if err != nil {
		return nil, err
	}
	units, err := rv.Flatten()
	if err != nil {
		return nil, err
	}

	generated := make(map[model.ParameterFileKey]string)
	var order []model.ParameterFileKey

	for _, unit := range units {
		for _, frame := range cfg.Frames {
			for _, app := range frame.Applications {
				for _, step := range app.Steps {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					if step.Parameters == "" {
						continue
					}
					u := unit.WithFrame(frame.Name).WithApplication(app.Name).WithStep(step.Name)
					key := u.ParameterFileKey()
					if _, done := generated[key]; done {
						continue
					}

					rel := filepath.Join(key.ReleaseState, key.Subscription, key.Frame, key.Application, key.Step) + renderedSuffix
					dst := filepath.Join(outDir, rel)
					region := u.Data.Region(step.Region)
					if err := render(step.Parameters, dst, buildEvalContext(cfg, u, region)); err != nil {
						return nil, err
					}
					generated[key] = dst
					order = append(order, key)
					logger.Debug("Generated parameter file.", "path", dst)
				}
			}
		}
	}

	if err := writeManifest(outDir, order, generated); err != nil {
		return nil, err
	}
	logger.Info("✅ Parameter files generated.", "count", len(order), "dir", outDir)
	return generated, nil
}

func writeManifest(outDir string, keys []model.ParameterFileKey, paths map[model.ParameterFileKey]string) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, key := range keys {
		if i > 0 {
			body.AppendNewline()
		}
		rel, err := filepath.Rel(outDir, paths[key])
		if err != nil {
			return fmt.Errorf("manifest path for %s: %w", paths[key], err)
		}
		block := body.AppendNewBlock("parameter_file", []string{
			key.Frame, key.Application, key.ReleaseState, key.Subscription, key.Step,
		})
		block.Body().SetAttributeValue("path", cty.StringVal(filepath.ToSlash(rel)))
	}

	if err := fsutil.EnsureDir(outDir); err != nil {
		return err
	}
	dst := filepath.Join(outDir, ManifestName)
	if err := os.WriteFile(dst, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", dst, err)
	}
	return nil
}
