// Package loader registers the HTTP features of the service.
//
// A Feature names itself, reports whether its config enables it, and mounts
// its routes on the router it is given:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager.LoadAll mounts enabled features in registration order and stops at
// the first error. The start command registers ingest, matching and builds;
// none of them import each other's loaders.
package loader
