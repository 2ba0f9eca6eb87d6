// Package view projects a Configuration onto one release context.
//
// Three thin layers narrow the configuration one dimension at a time:
//
//	ReleaseView      -> one release state, every client x system pair
//	DeploymentView   -> one system/client/release tuple
//	SubscriptionView -> one subscription of that tuple
//
// Each constructor validates its narrowing and fails fast with an *Error,
// before any deployment work starts. ReleaseView.Flatten walks the layers
// and yields one deployctx.FlattenedDeployment per subscription location.
package view
