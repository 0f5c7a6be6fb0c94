// Package provider defines the capability interface implemented by cloud
// provider modules and the registry that tracks which modules are loaded.
package provider

import (
	"github.com/weft/weft/resource/schema"
)

// A Provider contributes resource capabilities under a namespace.
//
// Provider modules implement this interface explicitly; the registry holds
// instances of it rather than injecting methods into a shared namespace.
type Provider interface {
	// Namespace returns the namespace the provider's resource types are
	// grouped under, for example aws.
	Namespace() string

	// Resources returns the schemas for all resource types the provider
	// supports, keyed by type name.
	Resources() map[string]*schema.Schema
}
