package domain

// Privilege names match the backend's grant vocabulary.
type Privilege string

const (
	// Catalog-level privileges.
	PrivCatalogManageAccess    Privilege = "CATALOG_MANAGE_ACCESS"
	PrivCatalogManageContent   Privilege = "CATALOG_MANAGE_CONTENT"
	PrivCatalogManageMetadata  Privilege = "CATALOG_MANAGE_METADATA"
	PrivCatalogReadProperties  Privilege = "CATALOG_READ_PROPERTIES"
	PrivCatalogWriteProperties Privilege = "CATALOG_WRITE_PROPERTIES"

	// Namespace privileges.
	PrivNamespaceCreate          Privilege = "NAMESPACE_CREATE"
	PrivNamespaceDrop            Privilege = "NAMESPACE_DROP"
	PrivNamespaceList            Privilege = "NAMESPACE_LIST"
	PrivNamespaceReadProperties  Privilege = "NAMESPACE_READ_PROPERTIES"
	PrivNamespaceWriteProperties Privilege = "NAMESPACE_WRITE_PROPERTIES"
	PrivNamespaceFullMetadata    Privilege = "NAMESPACE_FULL_METADATA"

	// Table privileges.
	PrivTableCreate          Privilege = "TABLE_CREATE"
	PrivTableDrop            Privilege = "TABLE_DROP"
	PrivTableList            Privilege = "TABLE_LIST"
	PrivTableReadData        Privilege = "TABLE_READ_DATA"
	PrivTableWriteData       Privilege = "TABLE_WRITE_DATA"
	PrivTableReadProperties  Privilege = "TABLE_READ_PROPERTIES"
	PrivTableWriteProperties Privilege = "TABLE_WRITE_PROPERTIES"
	PrivTableFullMetadata    Privilege = "TABLE_FULL_METADATA"

	// View privileges.
	PrivViewCreate          Privilege = "VIEW_CREATE"
	PrivViewDrop            Privilege = "VIEW_DROP"
	PrivViewList            Privilege = "VIEW_LIST"
	PrivViewReadProperties  Privilege = "VIEW_READ_PROPERTIES"
	PrivViewWriteProperties Privilege = "VIEW_WRITE_PROPERTIES"
	PrivViewFullMetadata    Privilege = "VIEW_FULL_METADATA"

	// Policy privileges.
	PrivPolicyCreate Privilege = "POLICY_CREATE"
	PrivPolicyList   Privilege = "POLICY_LIST"
	PrivPolicyRead   Privilege = "POLICY_READ"
	PrivPolicyWrite  Privilege = "POLICY_WRITE"
	PrivPolicyDrop   Privilege = "POLICY_DROP"
	PrivPolicyAttach Privilege = "POLICY_ATTACH"
	PrivPolicyDetach Privilege = "POLICY_DETACH"
)

// SecurableKind discriminates grant variants by the entity the grant covers.
type SecurableKind string

const (
	SecurableCatalog   SecurableKind = "catalog"
	SecurableNamespace SecurableKind = "namespace"
	SecurableTable     SecurableKind = "table"
	SecurableView      SecurableKind = "view"
	SecurablePolicy    SecurableKind = "policy"
)

// RootPathLabel is the display sentinel for grants scoped to the catalog root.
const RootPathLabel = "(root)"

// Per-kind allowed privilege vocabularies. Table/view/policy securables only
// accept their own narrow set; namespace and catalog securables additionally
// accept privileges that apply to the entities they contain.
var (
	tablePrivileges = privilegeSet(
		PrivTableDrop, PrivTableReadData, PrivTableWriteData,
		PrivTableReadProperties, PrivTableWriteProperties, PrivTableFullMetadata,
	)
	viewPrivileges = privilegeSet(
		PrivViewDrop, PrivViewReadProperties, PrivViewWriteProperties, PrivViewFullMetadata,
	)
	policyPrivileges = privilegeSet(
		PrivPolicyRead, PrivPolicyWrite, PrivPolicyDrop, PrivPolicyAttach, PrivPolicyDetach,
	)
	namespacePrivileges = mergePrivileges(privilegeSet(
		PrivNamespaceCreate, PrivNamespaceDrop, PrivNamespaceList,
		PrivNamespaceReadProperties, PrivNamespaceWriteProperties, PrivNamespaceFullMetadata,
		PrivTableCreate, PrivTableList, PrivViewCreate, PrivViewList, PrivPolicyCreate, PrivPolicyList,
	), tablePrivileges, viewPrivileges, policyPrivileges)
	catalogPrivileges = mergePrivileges(privilegeSet(
		PrivCatalogManageAccess, PrivCatalogManageContent, PrivCatalogManageMetadata,
		PrivCatalogReadProperties, PrivCatalogWriteProperties,
	), namespacePrivileges)
)

func privilegeSet(privs ...Privilege) map[Privilege]bool {
	set := make(map[Privilege]bool, len(privs))
	for _, p := range privs {
		set[p] = true
	}
	return set
}

func mergePrivileges(base map[Privilege]bool, others ...map[Privilege]bool) map[Privilege]bool {
	for _, other := range others {
		for p := range other {
			base[p] = true
		}
	}
	return base
}

// AllowedPrivileges returns the privilege vocabulary for a securable kind.
func AllowedPrivileges(kind SecurableKind) map[Privilege]bool {
	switch kind {
	case SecurableCatalog:
		return catalogPrivileges
	case SecurableNamespace:
		return namespacePrivileges
	case SecurableTable:
		return tablePrivileges
	case SecurableView:
		return viewPrivileges
	case SecurablePolicy:
		return policyPrivileges
	default:
		return nil
	}
}

// Grant is a single (entity, privilege) pair attached to a catalog role.
// It is a closed union: the only implementations are CatalogGrant,
// NamespaceGrant, TableGrant, ViewGrant, and PolicyGrant. Grants are
// immutable; to change one, revoke it and grant a replacement.
type Grant interface {
	Securable() SecurableKind
	Privilege() Privilege
	// Path is the namespace scoping the grant. Catalog grants return the
	// root namespace.
	Path() Namespace
	// EntityName is the table/view/policy name, or "" for catalog and
	// namespace grants.
	EntityName() string

	sealed()
}

// CatalogGrant covers the whole catalog.
type CatalogGrant struct {
	priv Privilege
}

// NamespaceGrant covers one namespace.
type NamespaceGrant struct {
	ns   Namespace
	priv Privilege
}

// TableGrant covers one table.
type TableGrant struct {
	ns   Namespace
	name string
	priv Privilege
}

// ViewGrant covers one view.
type ViewGrant struct {
	ns   Namespace
	name string
	priv Privilege
}

// PolicyGrant covers one policy.
type PolicyGrant struct {
	ns   Namespace
	name string
	priv Privilege
}

func (CatalogGrant) sealed()   {}
func (NamespaceGrant) sealed() {}
func (TableGrant) sealed()     {}
func (ViewGrant) sealed()      {}
func (PolicyGrant) sealed()    {}

func (g CatalogGrant) Securable() SecurableKind   { return SecurableCatalog }
func (g NamespaceGrant) Securable() SecurableKind { return SecurableNamespace }
func (g TableGrant) Securable() SecurableKind     { return SecurableTable }
func (g ViewGrant) Securable() SecurableKind      { return SecurableView }
func (g PolicyGrant) Securable() SecurableKind    { return SecurablePolicy }

func (g CatalogGrant) Privilege() Privilege   { return g.priv }
func (g NamespaceGrant) Privilege() Privilege { return g.priv }
func (g TableGrant) Privilege() Privilege     { return g.priv }
func (g ViewGrant) Privilege() Privilege      { return g.priv }
func (g PolicyGrant) Privilege() Privilege    { return g.priv }

func (g CatalogGrant) Path() Namespace   { return Namespace{} }
func (g NamespaceGrant) Path() Namespace { return g.ns }
func (g TableGrant) Path() Namespace     { return g.ns }
func (g ViewGrant) Path() Namespace      { return g.ns }
func (g PolicyGrant) Path() Namespace    { return g.ns }

func (g CatalogGrant) EntityName() string   { return "" }
func (g NamespaceGrant) EntityName() string { return "" }
func (g TableGrant) EntityName() string     { return g.name }
func (g ViewGrant) EntityName() string      { return g.name }
func (g PolicyGrant) EntityName() string    { return g.name }

func checkPrivilege(kind SecurableKind, p Privilege) error {
	if !AllowedPrivileges(kind)[p] {
		return &InvalidPrivilegeError{Securable: kind, Privilege: p}
	}
	return nil
}

// NewCatalogGrant builds a catalog-level grant.
func NewCatalogGrant(p Privilege) (CatalogGrant, error) {
	if err := checkPrivilege(SecurableCatalog, p); err != nil {
		return CatalogGrant{}, err
	}
	return CatalogGrant{priv: p}, nil
}

// NewNamespaceGrant builds a grant on the namespace at ns.
func NewNamespaceGrant(ns Namespace, p Privilege) (NamespaceGrant, error) {
	if err := checkPrivilege(SecurableNamespace, p); err != nil {
		return NamespaceGrant{}, err
	}
	return NamespaceGrant{ns: ns, priv: p}, nil
}

// NewTableGrant builds a grant on the table name under ns.
func NewTableGrant(ns Namespace, name string, p Privilege) (TableGrant, error) {
	if name == "" {
		return TableGrant{}, &MissingEntityNameError{Securable: SecurableTable}
	}
	if err := checkPrivilege(SecurableTable, p); err != nil {
		return TableGrant{}, err
	}
	return TableGrant{ns: ns, name: name, priv: p}, nil
}

// NewViewGrant builds a grant on the view name under ns.
func NewViewGrant(ns Namespace, name string, p Privilege) (ViewGrant, error) {
	if name == "" {
		return ViewGrant{}, &MissingEntityNameError{Securable: SecurableView}
	}
	if err := checkPrivilege(SecurableView, p); err != nil {
		return ViewGrant{}, err
	}
	return ViewGrant{ns: ns, name: name, priv: p}, nil
}

// NewPolicyGrant builds a grant on the policy name under ns.
func NewPolicyGrant(ns Namespace, name string, p Privilege) (PolicyGrant, error) {
	if name == "" {
		return PolicyGrant{}, &MissingEntityNameError{Securable: SecurablePolicy}
	}
	if err := checkPrivilege(SecurablePolicy, p); err != nil {
		return PolicyGrant{}, err
	}
	return PolicyGrant{ns: ns, name: name, priv: p}, nil
}

// BuildGrant builds a grant of any kind from its parts, validating the
// privilege vocabulary and the entity-name requirement.
func BuildGrant(kind SecurableKind, ns Namespace, name string, p Privilege) (Grant, error) {
	switch kind {
	case SecurableCatalog:
		return NewCatalogGrant(p)
	case SecurableNamespace:
		return NewNamespaceGrant(ns, p)
	case SecurableTable:
		return NewTableGrant(ns, name, p)
	case SecurableView:
		return NewViewGrant(ns, name, p)
	case SecurablePolicy:
		return NewPolicyGrant(ns, name, p)
	default:
		return nil, ErrValidation("unknown securable kind %q", kind)
	}
}

// GrantsEqual reports whether two grants target the same entity with the same
// privilege. This equality drives de-duplication in aggregation and decides
// which grant a revoke removes.
func GrantsEqual(a, b Grant) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Securable() == b.Securable() &&
		a.Path().Equal(b.Path()) &&
		a.EntityName() == b.EntityName() &&
		a.Privilege() == b.Privilege()
}

// FormatGrantPath renders the grant's target for display and search. It
// carries no semantic weight.
func FormatGrantPath(g Grant) string {
	switch g.Securable() {
	case SecurableCatalog:
		return RootPathLabel
	case SecurableNamespace:
		if g.Path().IsRoot() {
			return RootPathLabel
		}
		return g.Path().String()
	default:
		if g.Path().IsRoot() {
			return g.EntityName()
		}
		return g.Path().String() + "." + g.EntityName()
	}
}
