package renderer

import (
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// fakeTarget records every GPU step the frame loop asks for.
type fakeTarget struct {
	images int
	next   int

	acquireStatus []presentStatus
	presentStatus []presentStatus
	acquireErr    error
	submitErr     error
	maxWidth      int

	calls    []string
	recorded []int
	rebuilt  []core1_0.Extent2D
}

func (f *fakeTarget) acquireImage() (int, presentStatus, error) {
	f.calls = append(f.calls, "acquire")
	if f.acquireErr != nil {
		return 0, presentOK, f.acquireErr
	}

	status := presentOK
	if len(f.acquireStatus) > 0 {
		status, f.acquireStatus = f.acquireStatus[0], f.acquireStatus[1:]
	}

	index := f.next
	f.next = (f.next + 1) % f.images
	return index, status, nil
}

func (f *fakeTarget) recordCommands(slot, imageIndex int) error {
	f.calls = append(f.calls, "record")
	f.recorded = append(f.recorded, slot)
	return nil
}

func (f *fakeTarget) submitCommands(slot int) error {
	f.calls = append(f.calls, "submit")
	return f.submitErr
}

func (f *fakeTarget) presentImage(imageIndex int) (presentStatus, error) {
	f.calls = append(f.calls, "present")
	status := presentOK
	if len(f.presentStatus) > 0 {
		status, f.presentStatus = f.presentStatus[0], f.presentStatus[1:]
	}
	return status, nil
}

func (f *fakeTarget) waitQueueIdle() error {
	f.calls = append(f.calls, "wait")
	return nil
}

func (f *fakeTarget) rebuildSwapchain(extent core1_0.Extent2D) (core1_0.Extent2D, error) {
	f.calls = append(f.calls, "rebuild")
	f.rebuilt = append(f.rebuilt, extent)
	if f.maxWidth > 0 && extent.Width > f.maxWidth {
		extent.Width = f.maxWidth
	}
	return extent, nil
}

func (f *fakeTarget) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func newTestLoop(target *fakeTarget, slots int) *frameLoop {
	logger := slog.New(nopHandler{})
	extent := core1_0.Extent2D{Width: 800, Height: 600}
	resize := newResizeController(target, extent, extent, logger)
	return newFrameLoop(target, resize, slots)
}

func TestFrameSequence(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	err := loop.draw()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	expected := []string{"acquire", "record", "submit", "present", "wait"}
	if len(target.calls) != len(expected) {
		t.Fatalf("expected calls %v, got %v", expected, target.calls)
	}
	for i := range expected {
		if target.calls[i] != expected[i] {
			t.Fatalf("expected calls %v, got %v", expected, target.calls)
		}
	}

	stats := loop.stats()
	if stats.State != StateIdle {
		t.Errorf("expected Idle after a frame, got %s", stats.State)
	}
	if stats.Frames != 1 || stats.Submissions != 1 {
		t.Errorf("expected one frame and one submission, got %+v", stats)
	}
}

func TestSlotCycles(t *testing.T) {
	for _, slots := range []int{1, 2, 3} {
		target := &fakeTarget{images: 3}
		loop := newTestLoop(target, slots)

		for frame := 0; frame < 7; frame++ {
			err := loop.draw()
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
		}

		for frame, slot := range target.recorded {
			if slot != frame%slots {
				t.Errorf("%d slots: frame %d recorded into slot %d", slots, frame, slot)
			}
		}
		if loop.stats().Slot != 7%slots {
			t.Errorf("%d slots: expected next slot %d, got %d", slots, 7%slots, loop.stats().Slot)
		}
	}
}

func TestSuspendedDrawIsNoop(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	for _, size := range [][2]int{{0, 0}, {0, 600}, {800, 0}} {
		err := loop.resize.notify(size[0], size[1])
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		err = loop.draw()
		if err != nil {
			t.Fatalf("expected success while suspended, got %+v", err)
		}
	}

	if len(target.calls) != 0 {
		t.Errorf("expected no GPU calls while suspended, got %v", target.calls)
	}
	if loop.stats().Skipped != 3 {
		t.Errorf("expected 3 skipped frames, got %d", loop.stats().Skipped)
	}
}

func TestResumeRebuildsOnce(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	err := loop.resize.notify(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	err = loop.resize.notify(1024, 768)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	if target.count("rebuild") != 1 {
		t.Fatalf("expected exactly one rebuild, got %d", target.count("rebuild"))
	}
	if target.rebuilt[0] != (core1_0.Extent2D{Width: 1024, Height: 768}) {
		t.Errorf("expected rebuild at 1024x768, got %+v", target.rebuilt[0])
	}
	if loop.resize.suspended {
		t.Error("expected rendering to resume")
	}
}

func TestRestoreAtSameSizeRebuilds(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	_ = loop.resize.notify(0, 0)
	err := loop.resize.notify(800, 600)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	if target.count("rebuild") != 1 {
		t.Errorf("expected a rebuild after restore, got %d", target.count("rebuild"))
	}
}

func TestRepeatedExtentIgnored(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	err := loop.resize.notify(800, 600)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if target.count("rebuild") != 0 {
		t.Errorf("expected no rebuild for the current extent, got %d", target.count("rebuild"))
	}
}

func TestRepeatedClampedSizeIgnored(t *testing.T) {
	target := &fakeTarget{images: 3, maxWidth: 4096}
	loop := newTestLoop(target, 2)

	for i := 0; i < 3; i++ {
		err := loop.resize.notify(5000, 600)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
	}

	if target.count("rebuild") != 1 {
		t.Errorf("expected one rebuild for a repeated size, got %d", target.count("rebuild"))
	}
	if loop.resize.extent != (core1_0.Extent2D{Width: 4096, Height: 600}) {
		t.Errorf("expected the clamped extent 4096x600, got %+v", loop.resize.extent)
	}

	err := loop.resize.notify(4096, 600)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if target.count("rebuild") != 2 {
		t.Errorf("expected a new requested size to rebuild, got %d rebuilds", target.count("rebuild"))
	}
}

func TestAcquireOutOfDate(t *testing.T) {
	target := &fakeTarget{images: 3, acquireStatus: []presentStatus{presentOutOfDate}}
	loop := newTestLoop(target, 2)

	err := loop.draw()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	if target.count("record") != 0 || target.count("submit") != 0 {
		t.Errorf("expected the frame to be abandoned, got %v", target.calls)
	}
	if target.count("rebuild") != 1 || target.rebuilt[0] != (core1_0.Extent2D{Width: 800, Height: 600}) {
		t.Errorf("expected one rebuild at the current extent, got %v", target.rebuilt)
	}

	stats := loop.stats()
	if stats.State != StateIdle || stats.Slot != 0 || stats.Frames != 0 {
		t.Errorf("expected an idle loop at slot 0 with no frames, got %+v", stats)
	}
}

func TestAcquireSuboptimalProceeds(t *testing.T) {
	target := &fakeTarget{images: 3, acquireStatus: []presentStatus{presentSuboptimal}}
	loop := newTestLoop(target, 2)

	err := loop.draw()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if target.count("present") != 1 || target.count("rebuild") != 0 {
		t.Errorf("expected a normal frame, got %v", target.calls)
	}
}

func TestPresentTriggersRebuildAfterFrame(t *testing.T) {
	for _, status := range []presentStatus{presentSuboptimal, presentOutOfDate} {
		target := &fakeTarget{images: 3, presentStatus: []presentStatus{status}}
		loop := newTestLoop(target, 2)

		err := loop.draw()
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		last := target.calls[len(target.calls)-1]
		if last != "rebuild" || target.count("rebuild") != 1 {
			t.Errorf("status %d: expected one rebuild after the frame, got %v", status, target.calls)
		}
		if loop.stats().Frames != 1 || loop.stats().Slot != 1 {
			t.Errorf("status %d: expected the frame to complete, got %+v", status, loop.stats())
		}
	}
}

func TestDriverErrorsAreReturned(t *testing.T) {
	failure := driverFailure(errors.New("device lost"), "submit frame")
	target := &fakeTarget{images: 3, submitErr: failure}
	loop := newTestLoop(target, 2)

	err := loop.draw()
	if !errors.Is(err, ErrDriver) {
		t.Fatalf("expected a driver error, got %+v", err)
	}
	if target.count("present") != 0 {
		t.Errorf("expected no present after a failed submit, got %v", target.calls)
	}
	if loop.stats().State != StateSubmitting {
		t.Errorf("expected the loop to stop in Submitting, got %s", loop.stats().State)
	}
}

func TestResizeScenario(t *testing.T) {
	target := &fakeTarget{images: 3}
	loop := newTestLoop(target, 2)

	err := loop.draw()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	err = loop.resize.notify(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}

	submissions := loop.stats().Submissions
	for i := 0; i < 5; i++ {
		err = loop.draw()
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
	}
	if loop.stats().Submissions != submissions {
		t.Fatalf("expected no submissions while suspended, got %d", loop.stats().Submissions-submissions)
	}

	err = loop.resize.notify(1024, 768)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if loop.stats().Rebuilds != 1 {
		t.Fatalf("expected one rebuild, got %d", loop.stats().Rebuilds)
	}

	target.calls = nil
	err = loop.draw()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if target.count("acquire") != 1 || target.count("submit") != 1 || target.count("present") != 1 {
		t.Errorf("expected one acquire/submit/present cycle, got %v", target.calls)
	}
	if loop.resize.extent != (core1_0.Extent2D{Width: 1024, Height: 768}) {
		t.Errorf("expected extent 1024x768, got %+v", loop.resize.extent)
	}
}

func TestFrameStateString(t *testing.T) {
	if StatePresenting.String() != "Presenting" {
		t.Errorf("unexpected name %q", StatePresenting.String())
	}
	if FrameState(42).String() != "Unknown" {
		t.Errorf("unexpected name %q", FrameState(42).String())
	}
}
