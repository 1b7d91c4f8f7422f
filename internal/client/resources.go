package client

import (
	"encoding/json"
	"fmt"
	"unicode"

	"catalog-console/internal/domain"
)

// grantResource is the wire form of a grant: a discriminated object keyed by
// "type" with only the fields valid for that type.
type grantResource struct {
	Type       domain.SecurableKind `json:"type"`
	Namespace  []string             `json:"namespace,omitempty"`
	TableName  string               `json:"tableName,omitempty"`
	ViewName   string               `json:"viewName,omitempty"`
	PolicyName string               `json:"policyName,omitempty"`
	Privilege  domain.Privilege     `json:"privilege"`
}

func grantToResource(g domain.Grant) grantResource {
	r := grantResource{Type: g.Securable(), Privilege: g.Privilege()}
	if !g.Path().IsRoot() {
		r.Namespace = []string(g.Path())
	}
	switch g.Securable() {
	case domain.SecurableTable:
		r.TableName = g.EntityName()
	case domain.SecurableView:
		r.ViewName = g.EntityName()
	case domain.SecurablePolicy:
		r.PolicyName = g.EntityName()
	}
	return r
}

func grantFromResource(r grantResource) (domain.Grant, error) {
	ns := domain.Namespace(r.Namespace)
	var name string
	switch r.Type {
	case domain.SecurableTable:
		name = r.TableName
	case domain.SecurableView:
		name = r.ViewName
	case domain.SecurablePolicy:
		name = r.PolicyName
	}
	g, err := domain.BuildGrant(r.Type, ns, name, r.Privilege)
	if err != nil {
		return nil, fmt.Errorf("backend sent malformed grant: %w", err)
	}
	return g, nil
}

// namespaceEntry decodes a namespace the backend serves either as a bare
// path array or as an object wrapping one.
type namespaceEntry struct {
	parts domain.Namespace
}

func (e *namespaceEntry) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		e.parts = domain.Namespace(arr)
		return nil
	}
	var obj struct {
		Namespace []string `json:"namespace"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("namespace entry is neither array nor object: %w", err)
	}
	e.parts = domain.Namespace(obj.Namespace)
	return nil
}

// decodeList decodes a JSON list that arrives either bare or wrapped in an
// object under one of several candidate keys (e.g. "roles" vs
// "catalogRoles"). An envelope missing every candidate key decodes to an
// empty list.
func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	i := 0
	for i < len(data) && unicode.IsSpace(rune(data[i])) {
		i++
	}
	if i < len(data) && data[i] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, nil
}
