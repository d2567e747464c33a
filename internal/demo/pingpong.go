package demo

import (
	"rfr/internal/asyncrt"
	"rfr/internal/engine"
	"rfr/internal/schema"
)

// pingPongTask tracks one side of a ping-pong exchange. Turns are
// passed through a per-task mailbox key rather than a real channel:
// the demo drives asyncrt.Executor's generic wait-queue primitives
// directly, since the exchange needs no buffering or VM-intrinsic
// resumption kinds.
type pingPongTask struct {
	name      string
	remaining int
	iid       schema.InstrumentationId
	taskID    schema.TaskId
	mailbox   asyncrt.WakerKey
	peer      *pingPongTask
}

// RunPingPong drives two cooperating tasks that pass a turn back and
// forth `rounds` times each, recording every spawn/poll/wake/drop
// through rec. Grounded on rfr-subscriber's
// examples/ping-pong-chunked.rs: two named tasks, an mpsc handoff, and
// a final wait_flush once both have joined.
func RunPingPong(rec *Recorder, seqID engine.SeqID, now func() schema.AbsTimestamp, rounds int) {
	exec := asyncrt.NewExecutor(asyncrt.Config{Deterministic: true})
	callsite := rec.RegisterTaskCallsite(schema.LevelTrace)

	spawn := func(name string) *pingPongTask {
		iid, taskID := rec.NewTask(callsite.CallsiteId, name, schema.TaskKind{Discriminant: schema.TaskKindTask}, nil)
		rec.Record(seqID, now(), schema.NewNewTask(iid))
		st := &pingPongTask{name: name, remaining: rounds, iid: iid, taskID: taskID}
		spawnedID := exec.Spawn(0, st)
		st.mailbox = asyncrt.ChannelRecvKey(asyncrt.ChannelID(spawnedID))
		return st
	}

	ping := spawn("ping")
	pong := spawn("pong")
	ping.peer, pong.peer = pong, ping

	// "serve": a wake into pong's inbox before either task has run.
	// Pong is not parked yet, so this finds no waiter; ping, spawned
	// first, takes the first turn.
	exec.WakeKeyOne(pong.mailbox)

	for {
		id, ok := exec.NextReady()
		if !ok {
			break
		}
		task := exec.Task(id)
		st := task.State.(*pingPongTask)

		exec.SetCurrent(id)
		rec.Record(seqID, now(), schema.NewTaskPollStart(st.iid))

		if st.remaining <= 0 {
			rec.Record(seqID, now(), schema.NewTaskPollEnd(st.iid))
			exec.MarkDone(id, asyncrt.TaskResultSuccess, nil)
			rec.Record(seqID, now(), schema.NewTaskDrop(st.iid))
			exec.WakeKeyOne(st.peer.mailbox)
			continue
		}
		st.remaining--

		rec.Record(seqID, now(), schema.NewWakerWake(schema.Waker{TaskId: st.peer.taskID, Context: &st.taskID}))
		exec.WakeKeyOne(st.peer.mailbox)
		rec.Record(seqID, now(), schema.NewTaskPollEnd(st.iid))
		exec.ParkCurrent(st.mailbox)
	}
	exec.SetCurrent(0)
}
