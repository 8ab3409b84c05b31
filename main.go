package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/heathj/gotidy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Error("gotidy failed")
		os.Exit(1)
	}
}
