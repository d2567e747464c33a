package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"rfr/internal/chunked"
	"rfr/internal/chunkindex"
	"rfr/internal/config"
	"rfr/internal/demo"
	"rfr/internal/engine"
	"rfr/internal/schema"
	"rfr/internal/trace"
)

var (
	recordConfigPath string
	recordScenario   string
	recordCount      int
	recordWatch      bool
)

func init() {
	recordCmd.Flags().StringVar(&recordConfigPath, "config", "rfr.toml", "path to the recording session manifest")
	recordCmd.Flags().StringVar(&recordScenario, "scenario", "pingpong", "demo scenario to run (pingpong|thousand)")
	recordCmd.Flags().IntVar(&recordCount, "count", 0, "rounds (pingpong) or task count (thousand); 0 picks a scenario default")
	recordCmd.Flags().BoolVar(&recordWatch, "watch", false, "show a live progress view while recording runs")
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Run a bundled demo scenario against a live recording",
	RunE:  runRecord,
}

func wallClock() schema.AbsTimestamp {
	now := time.Now().UTC()
	return schema.AbsTimestamp{Secs: uint64(now.Unix()), SubsecMicros: uint32(now.Nanosecond() / 1000)}
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(recordConfigPath)
	if err != nil {
		return err
	}

	traceOpts, err := cfg.TraceOptions()
	if err != nil {
		return err
	}
	tracer, err := trace.New(traceOpts)
	if err != nil {
		return fmt.Errorf("record: starting tracer: %w", err)
	}
	defer tracer.Close()

	w, err := engine.NewWriter(cfg.Engine.RootDir, engine.Options{ChunkPeriodMicros: cfg.Engine.ChunkPeriodMicros})
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	tracer.Emit(&trace.Event{Time: time.Now(), Kind: trace.KindSpanBegin, Scope: trace.ScopeEngine, Name: cfg.Engine.RootDir})

	rec := demo.NewRecorder(w)
	seq := w.Sequence()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		runScenario(rec, seq, recordScenario, recordCount)
	}()

	stopFlusher := make(chan struct{})
	var flusherWG sync.WaitGroup
	flusherWG.Add(1)
	go func() {
		defer flusherWG.Done()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := w.WriteCompletedChunks(); err != nil {
					tracer.Emit(&trace.Event{Time: time.Now(), Kind: trace.KindPoint, Scope: trace.ScopeFlusher, Detail: err.Error()})
				}
			case <-stopFlusher:
				return
			}
		}
	}()

	if recordWatch {
		runWatchUI(cmd, liveSource{w: w}, done)
	} else {
		<-done
	}
	wg.Wait()
	close(stopFlusher)
	flusherWG.Wait()

	if err := w.WriteAllChunks(); err != nil {
		return fmt.Errorf("record: flushing final chunks: %w", err)
	}
	if cfg.Engine.Backpressure == config.BackpressureBlock {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.WaitFlush(ctx); err != nil {
			return fmt.Errorf("record: waiting for durable flush: %w", err)
		}
	}

	tracer.Emit(&trace.Event{Time: time.Now(), Kind: trace.KindSpanEnd, Scope: trace.ScopeEngine, Name: cfg.Engine.RootDir})
	if err := w.Shutdown(); err != nil {
		return fmt.Errorf("record: shutdown: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s to %s (%d chunk flushes)\n", recordScenario, cfg.Engine.RootDir, w.FlushCount())
	if showTimings {
		fmt.Fprint(cmd.OutOrStdout(), w.Timings().Summary())
	}

	if err := rebuildIndex(cfg.Engine.RootDir); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: could not rebuild chunk index: %v\n", err)
	}
	return nil
}

// rebuildIndex regenerates the optional chunkindex side-index after a
// recording finishes, so rfr cat/watch can do random access into it
// without re-reading every chunk header. It is always rebuildable from
// the chunk files, so a failure here never fails the recording itself.
func rebuildIndex(rootDir string) error {
	rec, err := chunked.OpenRecording(rootDir)
	if err != nil {
		return err
	}
	idx, err := chunkindex.Build(rec)
	if err != nil {
		return err
	}
	return chunkindex.WriteFile(rootDir, idx)
}

func runScenario(rec *demo.Recorder, seq engine.SeqID, scenario string, count int) {
	switch scenario {
	case "thousand":
		n := count
		if n <= 0 {
			n = 1000
		}
		demo.RunThousandTasks(rec, seq, wallClock, n)
	default:
		rounds := count
		if rounds <= 0 {
			rounds = 5
		}
		demo.RunPingPong(rec, seq, wallClock, rounds)
	}
}
