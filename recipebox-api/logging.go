package main

import (
	"net"
	"os"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func initLogger(level, logstashAddr string) {
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("Unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if logstashAddr == "" {
		return
	}
	conn, err := net.DialTimeout("tcp", logstashAddr, 5*time.Second)
	if err != nil {
		logger.WithError(err).WithField("addr", logstashAddr).Error("Failed to connect to logstash")
		return
	}
	logger.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "recipebox-api"})))
	logger.WithField("addr", logstashAddr).Info("Shipping logs to logstash")
}
