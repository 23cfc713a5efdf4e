// Package scanner implements the object-graph traversal that drives
// migration, reference normalization/resolution, merge, and validation
// passes. A Route is an ordered list of Visitors; the scanner
// dispatches each node to every visitor in the route that handles it,
// in route order.
package scanner

import (
	"reflect"

	"github.com/oaspec/oaspec/jsonref"
	"github.com/oaspec/oaspec/specmodel"
)

// VisitAction tells the scanner what to do after a visitor handles a
// node.
type VisitAction int

const (
	// Continue descends into the node's children as usual.
	Continue VisitAction = iota
	// Prune skips the node's children but continues the walk elsewhere.
	Prune
	// Stop aborts the entire walk immediately.
	Stop
)

// Handler is a visitor's node callback. app is opaque to the scanner;
// it is threaded through unmodified so handlers can reach caller state
// without the scanner depending on the caller's package. Within this
// module the reference passes pass nil and validate.Validate passes its
// *Result.
type Handler func(ptr jsonref.Pointer, node specmodel.Object, app interface{}) (VisitAction, error)

// Visitor handles a declared set of node types: ExactTypes are matched
// by the node's concrete Go type; BaseTypes are matched by the node's
// type implementing the interface, checked only if no exact match hit.
type Visitor struct {
	Name       string
	ExactTypes []reflect.Type
	BaseTypes  []reflect.Type
	Handle     Handler
}

func (v Visitor) handles(node specmodel.Object) bool {
	t := reflect.TypeOf(node)
	for _, et := range v.ExactTypes {
		if t == et {
			return true
		}
	}
	for _, bt := range v.BaseTypes {
		if t.Implements(bt) {
			return true
		}
	}
	return false
}

// Route is an ordered list of visitors applied to every visited node.
type Route []Visitor

// NewRoute builds a Route from the given visitors, preserving order.
func NewRoute(visitors ...Visitor) Route { return Route(visitors) }

// Options configures one scan.
type Options struct {
	// Leaves stops descent at nodes whose concrete type appears here:
	// the node is still visited, but its children are not enqueued.
	Leaves []reflect.Type
}

func (o Options) isLeaf(node specmodel.Object) bool {
	t := reflect.TypeOf(node)
	for _, lt := range o.Leaves {
		if t == lt {
			return true
		}
	}
	return false
}

// Scanner walks the graph forward-only, depth-first: each node is
// dispatched first and its children gathered afterward, so a handler's
// restructuring of the current node is visible to the descent that
// follows. Use Scanner2 when handlers must not perturb the in-flight
// walk.
type Scanner struct{ Opts Options }

// New creates a forward-only Scanner.
func New(opts Options) *Scanner { return &Scanner{Opts: opts} }

// Walk visits root and every descendant reachable through declared
// children, depth-first, in declaration order (specmodel.Children).
func (s *Scanner) Walk(root specmodel.Object, route Route, app interface{}) error {
	return s.walk(root.Identity().Pointer, root, route, app)
}

func (s *Scanner) walk(ptr jsonref.Pointer, node specmodel.Object, route Route, app interface{}) error {
	action, err := dispatch(ptr, node, route, app)
	if err != nil {
		return err
	}
	switch action {
	case Stop:
		return errStop
	case Prune:
		return nil
	}
	if s.Opts.isLeaf(node) {
		return nil
	}
	children := specmodel.Children(node)
	for _, c := range children {
		if err := s.walk(c.Pointer, c.Object, route, app); err != nil {
			return err
		}
	}
	return nil
}

// Scanner2 is the snapshotting traversal: it computes the full child
// frontier before any handler in the route runs on the current node, so
// a handler that restructures the node (replaces a child, merges nodes
// in) does not perturb the in-flight walk over the snapshot.
type Scanner2 struct{ Opts Options }

// NewSnapshotting creates a Scanner2.
func NewSnapshotting(opts Options) *Scanner2 { return &Scanner2{Opts: opts} }

// Walk is Scanner.Walk's snapshotting counterpart.
func (s *Scanner2) Walk(root specmodel.Object, route Route, app interface{}) error {
	return s.walk(root.Identity().Pointer, root, route, app)
}

func (s *Scanner2) walk(ptr jsonref.Pointer, node specmodel.Object, route Route, app interface{}) error {
	var frontier []specmodel.ChildNode
	if !s.Opts.isLeaf(node) {
		frontier = specmodel.Children(node)
	}

	action, err := dispatch(ptr, node, route, app)
	if err != nil {
		return err
	}
	switch action {
	case Stop:
		return errStop
	case Prune:
		return nil
	}

	for _, c := range frontier {
		if err := s.walk(c.Pointer, c.Object, route, app); err != nil {
			return err
		}
	}
	return nil
}

func dispatch(ptr jsonref.Pointer, node specmodel.Object, route Route, app interface{}) (VisitAction, error) {
	action := Continue
	for _, v := range route {
		if !v.handles(node) {
			continue
		}
		a, err := v.Handle(ptr, node, app)
		if err != nil {
			return Continue, err
		}
		if a == Stop {
			return Stop, nil
		}
		if a == Prune {
			action = Prune
		}
	}
	return action, nil
}

type stopError struct{}

func (stopError) Error() string { return "scanner: walk stopped" }

var errStop = stopError{}

// IsStop reports whether err is the sentinel a route uses to abort a
// walk early (as opposed to a genuine visitor failure).
func IsStop(err error) bool {
	_, ok := err.(stopError)
	return ok
}

// TypeOf is a small convenience for building ExactTypes/BaseTypes
// entries: TypeOf[*specmodel.Reference]().
func TypeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}
