package main

import "github.com/oaspec/oaspec/specmodel"

// dumpResolved formats a single resolved spec object for CLI output the
// same way App.Dump formats the whole document, since specmodel.Dump
// operates on any Object regardless of where it sits in the graph.
func dumpResolved(o specmodel.Object) map[string]interface{} {
	return specmodel.Dump(o)
}
