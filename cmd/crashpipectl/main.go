// File: cmd/crashpipectl/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// crashpipectl replays captured log output through a full crash pipeline,
// either into an HTTP ingestion endpoint or a local in-memory sink for
// dry runs.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/momentics/crashpipe/adapters"
	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/facade"
)

var rootCmd = &cobra.Command{
	Use:   "crashpipectl",
	Short: "Replay and inspect crash-pipeline captures",
}

func main() {
	rootCmd.AddCommand(newReplayCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReplayCmd() *cobra.Command {
	var (
		endpoint string
		token    string
		sevName  string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "replay <logfile>",
		Short: "Feed a log file through the capture pipeline",
		Long: `Reads a log file and feeds each entry through the log-capture hook.
Lines starting with "at " are treated as stack frames of the preceding
entry. Entries drain one per tick into the configured sink.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				logrus.SetLevel(logrus.WarnLevel)
			}
			severity, err := api.ParseSeverity(sevName)
			if err != nil {
				return err
			}
			return replay(args[0], endpoint, token, severity)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "ingestion base URL; empty replays into an in-memory sink")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for the ingestion endpoint")
	cmd.Flags().StringVar(&sevName, "severity", "error", "severity to classify entries as (debug|info|warning|error|assert)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "keep pipeline debug logging on")
	return cmd
}

func replay(path, endpoint, token string, severity api.Severity) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var sink api.Sink
	mem := adapters.NewMemorySink()
	if endpoint != "" {
		sink = adapters.NewHTTPSink(endpoint, token)
	} else {
		sink = mem
	}

	cfg := facade.DefaultConfig()
	cfg.WrapperSDKName = "crashpipectl"
	pipe, err := facade.New(cfg, sink)
	if err != nil {
		return err
	}
	if err := pipe.Initialize(); err != nil {
		return err
	}

	entries := 0
	flush := func(message string, stack []string) error {
		if message == "" {
			return nil
		}
		entries++
		return pipe.OnHandleLog(message, strings.Join(stack, "\n"), severity)
	}

	scanner := bufio.NewScanner(f)
	var message string
	var stack []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "at ") {
			stack = append(stack, strings.TrimSpace(line))
			continue
		}
		if err := flush(message, stack); err != nil {
			return err
		}
		message, stack = strings.TrimSpace(line), nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	if err := flush(message, stack); err != nil {
		return err
	}

	processed := pipe.Flush(30 * time.Second)

	fmt.Printf("entries read:      %d\n", entries)
	fmt.Printf("records delivered: %d\n", processed)
	for k, v := range pipe.Metrics().Snapshot() {
		fmt.Printf("metric %-18s %d\n", k+":", v)
	}
	if endpoint == "" {
		fmt.Printf("in-memory sink now holds %d report(s)\n", mem.Len())
	}
	return nil
}
