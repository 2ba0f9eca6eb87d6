package executor

import (
	"io"

	"github.com/specialistvlad/framedeploy/internal/output"
	"github.com/specialistvlad/framedeploy/internal/status"
)

func writeSummary(w io.Writer, entries []status.Entry) error {
	table := output.NewTable(w, "unit", "status", "message")
	for _, e := range entries {
		table.AddRow(e.Name, string(e.State.Code), e.State.Message)
	}
	return table.Render()
}
