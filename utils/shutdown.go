package utils

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Quit blocks until SIGINT or SIGTERM arrives, then calls Close.
func Quit(serviceName string, log logrus.FieldLogger, Close func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	closeOn(quit, serviceName, log, Close)
}

func closeOn(quit <-chan os.Signal, serviceName string, log logrus.FieldLogger, Close func()) {
	sig := <-quit
	log.WithField("signal", sig.String()).Infof("Closing %s", serviceName)
	Close()
}
