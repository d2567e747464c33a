package demo

import (
	"strconv"

	"rfr/internal/asyncrt"
	"rfr/internal/engine"
	"rfr/internal/schema"
)

// RunThousandTasks spawns n short-lived tasks and runs each to
// completion in a single poll, recording the full spawn/poll/drop
// lifecycle through rec. Grounded on
// rfr-subscriber/examples/thousand-tasks.rs, minus the real sleep: the
// original's tokio::time::sleep(100us) exists to give the scheduler
// something to interleave around, which this single-threaded demo has
// no need to reproduce — the point exercised here is engine throughput
// under many concurrently-open tasks within one interval, not timer
// semantics (see internal/asyncrt's richer Timer type for that).
func RunThousandTasks(rec *Recorder, seqID engine.SeqID, now func() schema.AbsTimestamp, n int) {
	exec := asyncrt.NewExecutor(asyncrt.Config{Deterministic: true})
	callsite := rec.RegisterTaskCallsite(schema.LevelTrace)

	type taskState struct {
		iid schema.InstrumentationId
	}

	for i := 0; i < n; i++ {
		name := taskName(i)
		iid, _ := rec.NewTask(callsite.CallsiteId, name, schema.TaskKind{Discriminant: schema.TaskKindTask}, nil)
		rec.Record(seqID, now(), schema.NewNewTask(iid))
		exec.Spawn(0, &taskState{iid: iid})
	}

	for {
		id, ok := exec.NextReady()
		if !ok {
			break
		}
		task := exec.Task(id)
		st := task.State.(*taskState)

		exec.SetCurrent(id)
		rec.Record(seqID, now(), schema.NewTaskPollStart(st.iid))
		rec.Record(seqID, now(), schema.NewTaskPollEnd(st.iid))
		exec.MarkDone(id, asyncrt.TaskResultSuccess, nil)
		rec.Record(seqID, now(), schema.NewTaskDrop(st.iid))
	}
	exec.SetCurrent(0)
}

func taskName(idx int) string {
	return "task-" + strconv.Itoa(idx)
}
