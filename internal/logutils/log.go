/*

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logutils builds and tags the structured logger cmd/resloc logs
// through: a go-logr/logr.Logger backed by zap. The pkg/* packages do not log.
package logutils

import (
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// nextOperationID is shared by every builder/importer/resolver instance in
// a process, so each log message gets a unique "opid" field across all of
// them, the way a single reconcileID used to be shared across every
// reconciler.
var nextOperationID int64

// WithOperationID adds an operation ID (opid) to log, so log lines from
// the same Seal/Import/Resolve call can be told apart from a concurrent
// one even when their output interleaves.
func WithOperationID(log logr.Logger) logr.Logger {
	opid := atomic.AddInt64(&nextOperationID, 1)
	return log.WithValues("opid", opid)
}

// New builds the process-wide logr.Logger: a zap logger at InfoLevel, or
// DebugLevel when debug is set, shimmed through zapr the way this
// project's reference manager binds zap to logr.
func New(debug bool) logr.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	rawlog, err := cfg.Build()
	if err != nil {
		// cfg.Build only fails on a malformed config; ours is static.
		panic(err)
	}
	return zapr.NewLogger(rawlog)
}
