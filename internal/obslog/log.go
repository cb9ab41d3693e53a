// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package obslog is the engine's structured logger. It wraps logrus behind
// a small package-level API so call sites never import logrus directly.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var global = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Fields is re-exported so callers don't need a direct logrus import.
type Fields = logrus.Fields

// SetLevel parses level (one of logrus's level names) and applies it to the
// global logger. Invalid levels are ignored and logged at warn.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		global.Warnf("obslog: invalid level %q, keeping %s", level, global.GetLevel())
		return
	}
	global.SetLevel(lvl)
}

func WithFields(fields Fields) *logrus.Entry {
	return global.WithFields(fields)
}

func Info(args ...interface{})                 { global.Info(args...) }
func Infof(format string, args ...interface{}) { global.Infof(format, args...) }

func Debug(args ...interface{})                 { global.Debug(args...) }
func Debugf(format string, args ...interface{}) { global.Debugf(format, args...) }

func Warn(args ...interface{})                 { global.Warn(args...) }
func Warnf(format string, args ...interface{}) { global.Warnf(format, args...) }

func Error(args ...interface{})                 { global.Error(args...) }
func Errorf(format string, args ...interface{}) { global.Errorf(format, args...) }

func Fatal(args ...interface{})                 { global.Fatal(args...) }
func Fatalf(format string, args ...interface{}) { global.Fatalf(format, args...) }
