package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrant_PrivilegeVocabularies(t *testing.T) {
	tests := []struct {
		name    string
		kind    SecurableKind
		ns      Namespace
		entity  string
		priv    Privilege
		wantErr bool
	}{
		{name: "catalog accepts catalog privilege", kind: SecurableCatalog, priv: PrivCatalogManageAccess},
		{name: "catalog accepts table privilege", kind: SecurableCatalog, priv: PrivTableReadData},
		{name: "namespace accepts namespace privilege", kind: SecurableNamespace, ns: Namespace{"a"}, priv: PrivNamespaceList},
		{name: "namespace accepts table privilege", kind: SecurableNamespace, ns: Namespace{"a"}, priv: PrivTableWriteData},
		{name: "namespace rejects catalog privilege", kind: SecurableNamespace, ns: Namespace{"a"}, priv: PrivCatalogManageAccess, wantErr: true},
		{name: "table accepts table privilege", kind: SecurableTable, ns: Namespace{"a"}, entity: "t", priv: PrivTableReadData},
		{name: "table rejects view privilege", kind: SecurableTable, ns: Namespace{"a"}, entity: "t", priv: PrivViewReadProperties, wantErr: true},
		{name: "table rejects namespace-scoped create", kind: SecurableTable, ns: Namespace{"a"}, entity: "t", priv: PrivTableCreate, wantErr: true},
		{name: "view accepts view privilege", kind: SecurableView, ns: Namespace{"a"}, entity: "v", priv: PrivViewReadProperties},
		{name: "view rejects table privilege", kind: SecurableView, ns: Namespace{"a"}, entity: "v", priv: PrivTableReadData, wantErr: true},
		{name: "policy accepts policy privilege", kind: SecurablePolicy, ns: Namespace{"a"}, entity: "p", priv: PrivPolicyAttach},
		{name: "policy rejects table privilege", kind: SecurablePolicy, ns: Namespace{"a"}, entity: "p", priv: PrivTableDrop, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGrant(tt.kind, tt.ns, tt.entity, tt.priv)
			if tt.wantErr {
				var invalid *InvalidPrivilegeError
				require.Error(t, err)
				assert.True(t, errors.As(err, &invalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, g.Securable())
			assert.Equal(t, tt.priv, g.Privilege())
		})
	}
}

func TestBuildGrant_MissingEntityName(t *testing.T) {
	for _, kind := range []SecurableKind{SecurableTable, SecurableView, SecurablePolicy} {
		t.Run(string(kind), func(t *testing.T) {
			_, err := BuildGrant(kind, Namespace{"a"}, "", PrivTableReadData)
			var missing *MissingEntityNameError
			require.Error(t, err)
			assert.True(t, errors.As(err, &missing))
			assert.Equal(t, kind, missing.Securable)
		})
	}
}

func TestBuildGrant_UnknownKind(t *testing.T) {
	_, err := BuildGrant(SecurableKind("warehouse"), nil, "", PrivTableReadData)
	var validation *ValidationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &validation))
}

func TestGrantsEqual(t *testing.T) {
	t1, err := NewTableGrant(Namespace{"a"}, "t1", PrivTableReadData)
	require.NoError(t, err)
	t1again, err := NewTableGrant(Namespace{"a"}, "t1", PrivTableReadData)
	require.NoError(t, err)
	t1write, err := NewTableGrant(Namespace{"a"}, "t1", PrivTableWriteData)
	require.NoError(t, err)
	t2, err := NewTableGrant(Namespace{"a"}, "t2", PrivTableReadData)
	require.NoError(t, err)
	nsGrant, err := NewNamespaceGrant(Namespace{"a"}, PrivNamespaceList)
	require.NoError(t, err)

	assert.True(t, GrantsEqual(t1, t1again))
	assert.False(t, GrantsEqual(t1, t1write))
	assert.False(t, GrantsEqual(t1, t2))
	assert.False(t, GrantsEqual(t1, nsGrant))
	assert.False(t, GrantsEqual(t1, nil))
	assert.True(t, GrantsEqual(nil, nil))
}

func TestFormatGrantPath(t *testing.T) {
	catalogGrant, err := NewCatalogGrant(PrivCatalogManageAccess)
	require.NoError(t, err)
	rootNS, err := NewNamespaceGrant(Namespace{}, PrivNamespaceList)
	require.NoError(t, err)
	deepNS, err := NewNamespaceGrant(Namespace{"a", "b"}, PrivNamespaceList)
	require.NoError(t, err)
	tbl, err := NewTableGrant(Namespace{"a", "b"}, "t", PrivTableReadData)
	require.NoError(t, err)
	bareView, err := NewViewGrant(Namespace{}, "v", PrivViewReadProperties)
	require.NoError(t, err)

	assert.Equal(t, RootPathLabel, FormatGrantPath(catalogGrant))
	assert.Equal(t, RootPathLabel, FormatGrantPath(rootNS))
	assert.Equal(t, "a.b", FormatGrantPath(deepNS))
	assert.Equal(t, "a.b.t", FormatGrantPath(tbl))
	assert.Equal(t, "v", FormatGrantPath(bareView))
}

func TestGrantVariants_EntityNameByConstruction(t *testing.T) {
	// Catalog and namespace grants cannot carry an entity name at all.
	cg, err := NewCatalogGrant(PrivCatalogReadProperties)
	require.NoError(t, err)
	assert.Empty(t, cg.EntityName())
	assert.True(t, cg.Path().IsRoot())

	ng, err := NewNamespaceGrant(Namespace{"a"}, PrivNamespaceDrop)
	require.NoError(t, err)
	assert.Empty(t, ng.EntityName())
}
