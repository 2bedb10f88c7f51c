// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command httpdump feeds one or more HTTP/1.x message files through the
// httpwire parser, printing a one-line summary per message (or BLOCKing
// and reporting why). With --connections > 1 it simulates that many
// concurrent connections replaying the same input, to exercise the
// parser's independence across goroutines.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coreflux/httpwire"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var connections int
	var chunkSize int
	var logPath string

	cmd := &cobra.Command{
		Use:   "httpdump [file...]",
		Short: "Parse HTTP/1.x messages with httpwire and print a verdict summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := httpwire.NewZapBlockLogger(logPath)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			metrics := httpwire.NewMetrics(reg)

			blobs := make([][]byte, len(args))
			for i, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				blobs[i] = b
			}

			if chunkSize < 1 {
				chunkSize = 4096
			}
			if connections < 1 {
				connections = 1
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			for c := 0; c < connections; c++ {
				c := c
				g.Go(func() error {
					connID := uuid.New()
					for _, b := range blobs {
						if err := dumpOne(ctx, b, chunkSize, connID, logger, metrics); err != nil {
							return fmt.Errorf("connection %d (%s): %w", c, connID, err)
						}
					}
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&connections, "connections", "c", 1, "number of simulated concurrent connections")
	cmd.Flags().IntVarP(&chunkSize, "chunk-size", "s", 4096, "bytes fed to the parser per Parse() call")
	cmd.Flags().StringVarP(&logPath, "log-file", "l", "", "BLOCK log path (stderr JSON if empty)")
	return cmd
}

func dumpOne(ctx context.Context, blob []byte, chunkSize int, connID uuid.UUID, logger httpwire.BlockLogger, metrics *httpwire.Metrics) error {
	var msg httpwire.Msg
	off := 0
	for off < len(blob) || off == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := off + chunkSize
		if end > len(blob) {
			end = len(blob)
		}
		n, verdict, err := httpwire.ParseMsg(blob[off:end], 0, &msg)
		metrics.Observe(verdict, err)
		switch verdict {
		case httpwire.BLOCK:
			if be, ok := err.(*httpwire.BlockError); ok {
				logger.LogBlock(be)
			}
			return err
		case httpwire.PASS:
			metrics.AddBodyBytes(uint64(msg.Body.Payload.Len()))
			fmt.Printf("%s: PASS method=%s status=%d body=%dB\n",
				connID, msg.FLine.MethodNo, msg.FLine.Status, msg.Body.Payload.Len())
			off += n
			msg = httpwire.Msg{}
			if off >= len(blob) {
				return nil
			}
			continue
		case httpwire.POSTPONE:
			off = end
			if off >= len(blob) {
				return fmt.Errorf("truncated input: message incomplete at EOF")
			}
		}
	}
	return nil
}
