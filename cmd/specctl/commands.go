package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oaspec/oaspec/errdefs"
)

func newDumpCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Load, prepare, and print the document as an untyped tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAndPrepareApp(flags)
			if err != nil {
				return err
			}
			tree, err := a.Dump()
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), flags.format, tree)
		},
	}
}

func newValidateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and prepare the document, reporting validation findings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			// Always prepare strictly so findings come back as an error to
			// report; --strict decides whether they fail the command.
			prepErr := a.Prepare(true)
			if prepErr == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "ok: no validation findings")
				return nil
			}
			if errdefs.IsValidation(prepErr) {
				fmt.Fprintln(cmd.OutOrStdout(), prepErr)
				if flags.strict {
					return prepErr
				}
				return nil
			}
			return prepErr
		},
	}
}

func newResolveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <ref>",
		Short: "Resolve a JSON Reference against the prepared document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAndPrepareApp(flags)
			if err != nil {
				return err
			}
			obj, err := a.Resolve(args[0], nil)
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), flags.format, dumpResolved(obj))
		},
	}
}

func newOpCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "op <operationId | tag##operationId>",
		Short: "Look up an operation by id, optionally scoped by tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAndPrepareApp(flags)
			if err != nil {
				return err
			}
			op, ok := a.Op(args[0])
			if !ok {
				return fmt.Errorf("no unambiguous operation matching %q", args[0])
			}
			return writeTree(cmd.OutOrStdout(), flags.format, dumpResolved(op))
		},
	}
}

func newModelCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "model <name>",
		Short: "Look up a schema by its qualified definitions/components name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAndPrepareApp(flags)
			if err != nil {
				return err
			}
			model, ok := a.Model(args[0])
			if !ok {
				return fmt.Errorf("no model named %q", args[0])
			}
			return writeTree(cmd.OutOrStdout(), flags.format, dumpResolved(model))
		},
	}
}
