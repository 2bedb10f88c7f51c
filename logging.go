// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpwire

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// BlockLogger receives one structured record per BLOCK verdict, see §7
// ("a structured log entry per BLOCK is appropriate"). ParseMsg does not
// call it; the caller passes the *BlockError it returns.
type BlockLogger interface {
	LogBlock(be *BlockError)
}

// zapBlockLogger adapts a *zap.Logger to BlockLogger.
type zapBlockLogger struct {
	log *zap.Logger
}

// NewZapBlockLogger builds a BlockLogger backed by zap, rotating through
// lumberjack when path is non-empty (stderr otherwise).
func NewZapBlockLogger(path string) (BlockLogger, error) {
	var core zapcore.Core
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if path != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
		core = zapcore.NewCore(enc, w, zap.InfoLevel)
	} else {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		return &zapBlockLogger{log: l}, nil
	}
	return &zapBlockLogger{log: zap.New(core)}, nil
}

func (z *zapBlockLogger) LogBlock(be *BlockError) {
	z.log.Warn("http parse blocked",
		zap.Int("offset", be.Offset),
		zap.Uint8("state", uint8(be.State)),
		zap.Uint8("inner", be.Inner),
		zap.String("header", be.HdrName),
		zap.Error(be.cause),
	)
}

// noopBlockLogger discards everything; used where the caller hasn't
// wired a real logger.
type noopBlockLogger struct{}

func (noopBlockLogger) LogBlock(*BlockError) {}

// NoopBlockLogger is a shared no-op BlockLogger.
var NoopBlockLogger BlockLogger = noopBlockLogger{}
