package validate

import (
	"fmt"

	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/specmodel"
)

// OperationKey is the (tag, operationId) pair the operation index is
// keyed by.
type OperationKey struct {
	Tag         string
	OperationID string
}

// OperationIndex builds the tag x operationId -> Operation map a
// prepared App exposes through its Op lookup.
func OperationIndex(root *specmodel.OpenAPI) map[OperationKey]*specmodel.Operation30 {
	out := map[OperationKey]*specmodel.Operation30{}
	for _, pathObj := range root.Paths() {
		pathItem, ok := pathObj.(*specmodel.PathItem30)
		if !ok {
			continue
		}
		for _, op := range pathItem.Operations() {
			tags, _ := op.Field("tags")
			opID := op.OperationID()
			if opID == "" {
				continue
			}
			if tagList, ok := tags.([]interface{}); ok && len(tagList) > 0 {
				for _, tag := range tagList {
					out[OperationKey{Tag: fmt.Sprint(tag), OperationID: opID}] = op
				}
				continue
			}
			out[OperationKey{OperationID: opID}] = op
		}
	}
	return out
}

// DetectSchemaCycles walks schema inclusion relations (allOf,
// properties, items — not $ref, which may legitimately cycle) from
// every schema in schemas, reporting one Finding per cycle found.
// Distinct from reference-graph cycles, which the resolver tolerates.
func DetectSchemaCycles(schemas map[string]*specmodel.Schema) *Result {
	result := NewResult()
	visiting := map[*specmodel.Schema]bool{}
	done := map[*specmodel.Schema]bool{}

	var visit func(s *specmodel.Schema, path []string, ptr jsonref.Pointer)
	visit = func(s *specmodel.Schema, path []string, ptr jsonref.Pointer) {
		if done[s] {
			return
		}
		if visiting[s] {
			result.Add(Finding{
				Pointer: ptr, Kind: KindCycle,
				Message: fmt.Sprintf("schema inclusion cycle: %v", append(path, s.Identity().Pointer.String())),
			})
			return
		}
		visiting[s] = true
		defer func() { visiting[s] = false; done[s] = true }()

		nextPath := append(append([]string{}, path...), s.Identity().Pointer.String())

		for _, child := range s.AllOf() {
			if cs, ok := child.(*specmodel.Schema); ok {
				visit(cs, nextPath, child.Identity().Pointer)
			}
		}
		for _, prop := range s.Properties() {
			if cs, ok := prop.(*specmodel.Schema); ok {
				visit(cs, nextPath, prop.Identity().Pointer)
			}
		}
		if items, ok := s.Items(); ok {
			if cs, ok := items.(*specmodel.Schema); ok {
				visit(cs, nextPath, items.Identity().Pointer)
			}
		}
	}

	for _, s := range schemas {
		visit(s, nil, s.Identity().Pointer)
	}
	return result
}
