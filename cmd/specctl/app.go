package main

import (
	"fmt"

	"github.com/oaspec/oaspec/app"
	"github.com/oaspec/oaspec/specmodel"
)

// buildApp constructs and loads an App from the shared flags, without
// running Prepare (validate-only commands need Loaded, not Prepared).
func buildApp(flags *globalFlags) (*app.App, error) {
	if flags.url == "" {
		return nil, fmt.Errorf("--url is required")
	}
	target, ok := specmodel.ParseVersion(flags.targetVersion)
	if !ok {
		return nil, fmt.Errorf("invalid --target-version %q: want 1.2, 2.0, or 3.0.0", flags.targetVersion)
	}

	a := app.New(
		app.WithScopeSeparator(flags.scopeSeparator),
		app.WithDefaultTargetVersion(target),
		app.WithStrict(flags.strict),
	)
	if err := a.Load(flags.url); err != nil {
		return nil, fmt.Errorf("loading %s: %w", flags.url, err)
	}
	return a, nil
}

// buildAndPrepareApp is buildApp plus Prepare, the composition every
// command but "validate" wants (validate reports Prepare's own error
// instead of propagating it as a command failure).
func buildAndPrepareApp(flags *globalFlags) (*app.App, error) {
	a, err := buildApp(flags)
	if err != nil {
		return nil, err
	}
	if err := a.Prepare(a.DefaultStrict()); err != nil {
		return nil, fmt.Errorf("preparing %s: %w", flags.url, err)
	}
	return a, nil
}
