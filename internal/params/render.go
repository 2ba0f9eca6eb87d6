package params

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/framedeploy/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const (
	parametersSchema = "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#"
	contentVersion   = "1.0.0.0"
)

// render evaluates the parameter source at src and writes the ARM parameter
// document to dst.
func render(src, dst string, evalCtx *hcl.EvalContext) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(src)
	if diags.HasErrors() {
		return fmt.Errorf("parse parameters %s: %w", src, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("read parameters %s: %w", src, diags)
	}
	if err := checkReferences(attrs, evalCtx); err != nil {
		return fmt.Errorf("parameters %s: %w", src, err)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]cty.Value, len(attrs))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("evaluate parameter %q in %s: %w", name, src, diags)
		}
		values[name] = cty.ObjectVal(map[string]cty.Value{"value": val})
	}

	parameters := cty.EmptyObjectVal
	if len(values) > 0 {
		parameters = cty.ObjectVal(values)
	}
	doc := cty.ObjectVal(map[string]cty.Value{
		"$schema":        cty.StringVal(parametersSchema),
		"contentVersion": cty.StringVal(contentVersion),
		"parameters":     parameters,
	})

	out, err := ctyjson.Marshal(doc, doc.Type())
	if err != nil {
		return fmt.Errorf("encode parameters %s: %w", src, err)
	}

	if err := fsutil.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("write parameters %s: %w", dst, err)
	}
	return nil
}
