package executor

import (
	"strings"
)

const (
	nameSeparator = "-"
	// maxResourceGroupName is the provider's resource group name limit.
	maxResourceGroupName = 90
	validationMarker     = "val"
)

// ResourceGroupName returns explicit when set, otherwise the name derived
// from the application, frame and client.
func ResourceGroupName(explicit, application, frame, client string) string {
	if explicit != "" {
		return explicit
	}
	return strings.Join([]string{application, frame, client}, nameSeparator)
}

// ValidationName appends a run-scoped suffix to name so resource groups
// created while validating never collide with live ones. The name is
// truncated when the result would exceed the provider limit, dropping any
// separators left dangling at the cut.
func ValidationName(name, runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	suffix := nameSeparator + validationMarker + nameSeparator + id
	if len(name)+len(suffix) > maxResourceGroupName {
		name = strings.TrimRight(name[:maxResourceGroupName-len(suffix)], "-_.")
	}
	return name + suffix
}
