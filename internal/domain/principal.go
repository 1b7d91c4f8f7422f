package domain

// Principal is an authenticated identity (service or user) known to the
// backend.
type Principal struct {
	Name       string
	ClientID   string
	Properties map[string]string
}

// PrincipalRole is a named group of principals, the unit of privilege
// assignment.
type PrincipalRole struct {
	Name       string
	Properties map[string]string
}

// CatalogRole is a named group of privileges scoped to one catalog.
type CatalogRole struct {
	Name string
}

// Catalog is one catalog visible through the management API.
type Catalog struct {
	Name string
	Type string
}

// CatalogRoleRef identifies a catalog role together with its owning catalog.
// Grants are always attached to exactly one such pair.
type CatalogRoleRef struct {
	Catalog string
	Role    string
}

// TableIdent identifies a table inside a catalog's namespace tree.
type TableIdent struct {
	Namespace Namespace
	Name      string
}
