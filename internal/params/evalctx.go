package params

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are the helpers available inside parameter expressions.
var functions = map[string]function.Function{
	"upper":      stdlib.UpperFunc,
	"lower":      stdlib.LowerFunc,
	"join":       stdlib.JoinFunc,
	"format":     stdlib.FormatFunc,
	"concat":     stdlib.ConcatFunc,
	"merge":      stdlib.MergeFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"replace":    stdlib.ReplaceFunc,
	"length":     stdlib.LengthFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
}

// buildEvalContext creates the HCL evaluation context for one unit
// positioned at a step.
func buildEvalContext(cfg *model.Configuration, unit deployctx.FlattenedDeployment, region string) *hcl.EvalContext {
	c := unit.Context
	vars := map[string]cty.Value{
		"location": cty.ObjectVal(map[string]cty.Value{
			"name":      cty.StringVal(unit.Data.Location),
			"primary":   cty.StringVal(unit.Data.PrimaryRegion),
			"secondary": cty.StringVal(unit.Data.SecondaryRegion),
			"region":    cty.StringVal(region),
		}),
		"tags":    stringObject(c.Tags()),
		"secrets": stringObject(cfg.StaticSecrets),
		"context": cty.ObjectVal(map[string]cty.Value{
			"client":        cty.StringVal(c.Client),
			"system":        cty.StringVal(c.System),
			"frame":         cty.StringVal(c.Frame),
			"application":   cty.StringVal(c.Application),
			"step":          cty.StringVal(c.Step),
			"subscription":  cty.StringVal(c.Subscription),
			"tenant":        cty.StringVal(c.Tenant),
			"release_state": cty.StringVal(c.ReleaseState),
		}),
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions}
}

func stringObject(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(m))
	for k, v := range m {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}
