// Command specctl is a thin CLI over package app: load a Swagger/OpenAPI
// document, prepare it (migrate + resolve + validate), and inspect the
// result. All business logic lives in app/specmodel/migrate/validate;
// this command only wires flags to App calls and formats output.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := newRootCommand()
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("specctl: command failed")
		os.Exit(1)
	}
}
