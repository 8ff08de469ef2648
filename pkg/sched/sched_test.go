package sched

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRootTaskNeverDies(t *testing.T) {
	rt := NewRuntime()
	require.Equal(t, Active, rt.StateOf(RootID))
	require.Equal(t, 1, rt.Alive())
}

func TestSpawnAndFinish(t *testing.T) {
	rt := NewRuntime()
	done := make(chan struct{})
	tsk := rt.Spawn(func(t *Task) {
		close(done)
	})
	<-done
	require.Eventually(t, func() bool {
		return rt.StateOf(tsk.ID()) == Dead
	}, time.Second, time.Millisecond)
}

func TestWakeIsIdempotent(t *testing.T) {
	rt := NewRuntime()
	rt.Wake(999) // no such task; must not panic
	tsk := rt.Spawn(func(t *Task) {})
	rt.Wake(tsk.ID())
	rt.Wake(tsk.ID())
}

func TestSleepReadInterruptedByWake(t *testing.T) {
	rt := NewRuntime()
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	woken := make(chan error, 1)
	var tsk *Task
	ready := make(chan struct{})
	tsk = rt.Spawn(func(task *Task) {
		close(ready)
		buf := make([]byte, 16)
		_, err := task.SleepRead(server, func() (int, error) {
			return server.Read(buf)
		})
		woken <- err
	})
	<-ready
	require.Eventually(t, func() bool {
		return rt.StateOf(tsk.ID()) == Asleep
	}, time.Second, time.Millisecond)

	rt.Wake(tsk.ID())

	select {
	case err := <-woken:
		require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("sleep_read was not interrupted by wake")
	}
	require.Eventually(t, func() bool {
		return rt.StateOf(tsk.ID()) == Dead
	}, time.Second, time.Millisecond)
}
