package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags collects the flags every subcommand shares (the document
// to load and how to prepare it), set up once on the root command and
// read back by each subcommand's RunE.
type globalFlags struct {
	url            string
	targetVersion  string
	scopeSeparator string
	strict         bool
	verbose        bool
	format         string
}

func (f *globalFlags) install(pf *pflag.FlagSet) {
	pf.StringVar(&f.url, "url", "", "document URL or file path to load (required)")
	pf.StringVar(&f.targetVersion, "target-version", "3.0.0", "spec version to migrate to: 1.2, 2.0, or 3.0.0")
	pf.StringVar(&f.scopeSeparator, "scope-separator", "##", "1.2 resource/model-id join string")
	pf.BoolVar(&f.strict, "strict", false, "fail on any validation finding")
	pf.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	pf.StringVar(&f.format, "format", "json", "output format: json or yaml")
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "specctl",
		Short: "Load, migrate, and inspect Swagger/OpenAPI documents",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	flags.install(root.PersistentFlags())

	root.AddCommand(
		newDumpCommand(flags),
		newValidateCommand(flags),
		newResolveCommand(flags),
		newOpCommand(flags),
		newModelCommand(flags),
	)
	return root
}
