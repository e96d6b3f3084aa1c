package meshundo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWorkerPoolRunsInSubmissionOrder(t *testing.T) {
	p := newWorkerPool()
	defer p.Stop()

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		p.Push(func() { got = append(got, i) })
	}
	p.Wait()

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestWorkerPoolWaitIsFullBarrier(t *testing.T) {
	p := newWorkerPool()
	defer p.Stop()

	done := make([]bool, 3)
	for i := range done {
		i := i
		p.Push(func() {
			time.Sleep(5 * time.Millisecond)
			done[i] = true
		})
	}
	p.Wait()

	for i, d := range done {
		assert.True(t, d, "task %d not finished at barrier", i)
	}

	// Wait on a drained pool returns immediately and the pool stays
	// usable.
	p.Wait()
	ran := false
	p.Push(func() { ran = true })
	p.Wait()
	assert.True(t, ran)
}

func TestWorkerPoolStopTerminatesWorker(t *testing.T) {
	p := newWorkerPool()
	ran := false
	p.Push(func() { ran = true })
	p.Stop()
	assert.True(t, ran, "Stop drains queued work before terminating")
	// goleak's TestMain verifies the goroutine is gone.
}

func TestServiceBackgroundWorkerShutsDownAtZeroUsers(t *testing.T) {
	svc := NewService(Options{Background: true, Logger: testLogger()})

	snap := svc.Capture(testObject("cube", testEditMesh(8, 1)), nil)
	assert.NotNil(t, svc.pool)

	svc.Free(snap)
	assert.Nil(t, svc.pool, "worker torn down with the last snapshot")
}
