package scanner_test

import (
	"reflect"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/scanner"
	"github.com/oaspec/oaspec/specmodel"
)

var objectType = reflect.TypeOf((*specmodel.Object)(nil)).Elem()

func buildSwagger(t *testing.T, raw map[string]interface{}) specmodel.Object {
	t.Helper()
	obj, err := specmodel.Construct(specmodel.SwaggerMeta(), raw, "file:///spec.json", specmodel.V2_0)
	assert.NilError(t, err)
	return obj
}

func TestWalkVisitsEveryDeclaredChild(t *testing.T) {
	root := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})

	var seen []string
	route := scanner.NewRoute(scanner.Visitor{
		Name:      "collect",
		BaseTypes: []reflect.Type{objectType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			seen = append(seen, ptr.String())
			return scanner.Continue, nil
		},
	})
	s := scanner.New(scanner.Options{})
	err := s.Walk(root, route, nil)
	assert.NilError(t, err)
	assert.Assert(t, containsStr(seen, "#"))
	assert.Assert(t, containsStr(seen, "#/info"))
	assert.Assert(t, containsStr(seen, "#/definitions/Pet"))
}

func TestPruneSkipsChildren(t *testing.T) {
	root := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1", "contact": map[string]interface{}{"name": "a"}},
	})

	var seen []string
	route := scanner.NewRoute(scanner.Visitor{
		Name:      "prune-info",
		BaseTypes: []reflect.Type{objectType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			seen = append(seen, ptr.String())
			if ptr.String() == "#/info" {
				return scanner.Prune, nil
			}
			return scanner.Continue, nil
		},
	})
	s := scanner.New(scanner.Options{})
	err := s.Walk(root, route, nil)
	assert.NilError(t, err)
	assert.Assert(t, !containsStr(seen, "#/info/contact"))
}

func TestStopAbortsWalk(t *testing.T) {
	root := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
		},
	})

	route := scanner.NewRoute(scanner.Visitor{
		Name:      "stop-at-info",
		BaseTypes: []reflect.Type{objectType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			if ptr.String() == "#/info" {
				return scanner.Stop, nil
			}
			return scanner.Continue, nil
		},
	})
	s := scanner.New(scanner.Options{})
	err := s.Walk(root, route, nil)
	assert.Assert(t, scanner.IsStop(err))
}

func TestSnapshotScannerWalksPrecomputedFrontier(t *testing.T) {
	root := buildSwagger(t, map[string]interface{}{
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{"type": "object"},
			"Dog": map[string]interface{}{"type": "object"},
		},
	})

	var seen []string
	route := scanner.NewRoute(scanner.Visitor{
		Name:      "collect",
		BaseTypes: []reflect.Type{objectType},
		Handle: func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (scanner.VisitAction, error) {
			seen = append(seen, ptr.String())
			return scanner.Continue, nil
		},
	})
	s2 := scanner.NewSnapshotting(scanner.Options{})
	err := s2.Walk(root, route, nil)
	assert.NilError(t, err)
	assert.Assert(t, containsStr(seen, "#/definitions/Dog"))
	assert.Assert(t, containsStr(seen, "#/definitions/Pet"))
}

func containsStr(hay []string, needle string) bool {
	for _, s := range hay {
		if s == needle {
			return true
		}
	}
	return false
}
