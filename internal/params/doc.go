// Package params turns a step's parameter source into a deployment
// parameter file the backend can consume.
//
// Parameter sources are HCL attribute files. Each attribute becomes one
// template parameter; its expression is evaluated against the unit being
// deployed:
//
//	location.name, location.primary, location.secondary, location.region
//	tags.<key>          pipeline and hierarchy tags of the unit
//	secrets.<key>       static secrets from the settings block
//	context.<field>     client, system, frame, application, step,
//	                    subscription, tenant, release_state
//
// For example:
//
//	sku      = "Standard_LRS"
//	location = location.region
//	name     = "st${context.client}${context.system}"
//	tags     = tags
//
// The rendered output is an ARM deployment parameter document.
package params
