package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writeTree renders an untyped tree as JSON (indented) or YAML to w,
// per the shared --format flag. YAML output goes through yaml.v3, kept
// separate from the YAML-to-JSON parse path fetch uses internally,
// since this direction is serialization, not parsing.
func writeTree(w io.Writer, format string, tree interface{}) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json", "":
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown --format %q: want json or yaml", format)
	}
}
