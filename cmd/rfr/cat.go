package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/text/width"

	"rfr/internal/chunked"
	"rfr/internal/diag"
	"rfr/internal/schema"
	"rfr/internal/stream"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print every record in a streaming file or chunked recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return catPath(cmd, args[0])
	},
}

func catPath(cmd *cobra.Command, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return catChunked(cmd, path)
	}
	return catStream(cmd, path)
}

func catChunked(cmd *cobra.Command, path string) error {
	rec, err := chunked.OpenRecording(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	bag := diag.NewBag(256)

	fmt.Fprintf(out, "%s  %d callsite(s), %d chunk file(s)\n",
		path, len(rec.Callsites), len(rec.ChunkPaths()))

	for _, loaded := range rec.Chunks() {
		if loaded.Err != nil {
			code := diag.IOFailure
			if loaded.Err == chunked.ErrPartialChunk {
				code = diag.PartialChunk
			}
			diag.ReportError(diag.BagReporter{Bag: bag}, code, diag.AtFile(loaded.Path), loaded.Err.Error()).Emit()
		}
		for _, sc := range loaded.Chunk.SeqChunks {
			names := taskNames(sc.Objects)
			for i, r := range sc.Records {
				fmt.Fprintln(out, formatChunkedRecord(sc.Header.SeqId, i, r, names))
			}
		}
	}
	printBag(out, bag)
	return nil
}

func catStream(cmd *cobra.Command, path string) error {
	r, err := stream.Open(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	bag := diag.NewBag(256)

	fmt.Fprintf(out, "%s  format %s\n", path, r.FormatIdentifier())

	for i := 0; ; i++ {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			code := diag.IOFailure
			if err == stream.ErrTruncated {
				code = diag.CodecTruncated
			}
			diag.ReportError(diag.BagReporter{Bag: bag}, code, diag.AtRecord(path, 0, i), err.Error()).Emit()
			break
		}
		fmt.Fprintln(out, formatStreamRecord(i, rec))
	}
	printBag(out, bag)
	return nil
}

// printBag renders every diagnostic collected while reading a
// recording, sorted into a stable order, colored by severity the same
// way the record stream itself is colored by kind.
func printBag(out io.Writer, bag *diag.Bag) {
	if bag.Len() == 0 {
		return
	}
	bag.Sort()
	for _, d := range bag.Items() {
		c := color.New(color.FgYellow)
		if d.Severity == diag.SevError {
			c = color.New(color.FgRed)
		}
		fmt.Fprintln(out, c.Sprintf("%s: %s: %s", d.Primary, d.Severity, d.Message))
	}
}

func taskNames(objects []schema.Object) map[schema.InstrumentationId]string {
	names := make(map[schema.InstrumentationId]string, len(objects))
	for _, obj := range objects {
		if obj.Kind == schema.ObjectTask {
			names[obj.Task.Iid] = obj.Task.TaskName
		}
	}
	return names
}

func chunkedKindName(k schema.ChunkedRecordKind) string {
	switch k {
	case schema.RecSpanNew:
		return "span.new"
	case schema.RecSpanEnter:
		return "span.enter"
	case schema.RecSpanExit:
		return "span.exit"
	case schema.RecSpanClose:
		return "span.close"
	case schema.RecEvent:
		return "event"
	case schema.RecNewTask:
		return "task.new"
	case schema.RecTaskPollStart:
		return "task.poll_start"
	case schema.RecTaskPollEnd:
		return "task.poll_end"
	case schema.RecTaskDrop:
		return "task.drop"
	case schema.RecWakerWake:
		return "waker.wake"
	case schema.RecWakerWakeByRef:
		return "waker.wake_by_ref"
	case schema.RecWakerClone:
		return "waker.clone"
	case schema.RecWakerDrop:
		return "waker.drop"
	default:
		return "unknown"
	}
}

func colorForKindName(name string) *color.Color {
	switch {
	case len(name) >= 4 && name[:4] == "task":
		return color.New(color.FgYellow)
	case len(name) >= 5 && name[:5] == "waker":
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}

func formatChunkedRecord(seqID schema.SeqId, index int, r schema.ChunkedRecord, names map[schema.InstrumentationId]string) string {
	name := chunkedKindName(r.Data.Kind)
	styled := colorForKindName(name).Sprint(padKind(name))

	var subject string
	switch r.Data.Kind {
	case schema.RecSpanNew, schema.RecSpanEnter, schema.RecSpanExit, schema.RecSpanClose,
		schema.RecNewTask, schema.RecTaskPollStart, schema.RecTaskPollEnd, schema.RecTaskDrop:
		subject = taskLabel(r.Data.Iid, names)
	case schema.RecWakerWake, schema.RecWakerWakeByRef, schema.RecWakerClone, schema.RecWakerDrop:
		subject = taskLabel(schema.InstrumentationId(r.Data.Waker.TaskId), names)
	}

	return fmt.Sprintf("[seq %d @ %7dus] %s %s", seqID, r.Timestamp.Micros, styled, subject)
}

func formatStreamRecord(index int, r schema.StreamRecord) string {
	name := streamKindName(r.Data.Kind)
	styled := colorForKindName(name).Sprint(padKind(name))
	return fmt.Sprintf("[%4d] %s", index, styled)
}

func streamKindName(k schema.StreamRecordKind) string {
	switch k {
	case schema.StreamEnd:
		return "end"
	case schema.StreamCallsite:
		return "callsite"
	case schema.StreamSpan:
		return "span"
	case schema.StreamEvent:
		return "event"
	case schema.StreamTask:
		return "task"
	case schema.StreamSpanNew:
		return "span.new"
	case schema.StreamSpanEnter:
		return "span.enter"
	case schema.StreamSpanExit:
		return "span.exit"
	case schema.StreamSpanClose:
		return "span.close"
	case schema.StreamNewTask:
		return "task.new"
	case schema.StreamTaskPollStart:
		return "task.poll_start"
	case schema.StreamTaskPollEnd:
		return "task.poll_end"
	case schema.StreamTaskDrop:
		return "task.drop"
	case schema.StreamWakerWake:
		return "waker.wake"
	case schema.StreamWakerWakeByRef:
		return "waker.wake_by_ref"
	case schema.StreamWakerClone:
		return "waker.clone"
	case schema.StreamWakerDrop:
		return "waker.drop"
	default:
		return "unknown"
	}
}

// taskLabel resolves iid to its declared task name, falling back to
// the bare iid when the object table has no name (e.g. spans, or a
// task this sub-chunk never declared). The label is not padded or
// width-measured; only the kind column is aligned (see padKind).
func taskLabel(iid schema.InstrumentationId, names map[schema.InstrumentationId]string) string {
	if name, ok := names[iid]; ok {
		return name
	}
	return fmt.Sprintf("iid#%d", iid)
}

const kindColumnWidth = 18

func padKind(name string) string {
	w := width.Narrow.String(name)
	if runewidth.StringWidth(w) >= kindColumnWidth {
		return w
	}
	return w + spaces(kindColumnWidth-runewidth.StringWidth(w))
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
