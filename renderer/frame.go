package renderer

// FrameState is the step of the frame protocol the renderer is in.
type FrameState int

const (
	StateIdle FrameState = iota
	StateAcquiring
	StateRecording
	StateSubmitting
	StatePresenting
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAcquiring:
		return "Acquiring"
	case StateRecording:
		return "Recording"
	case StateSubmitting:
		return "Submitting"
	case StatePresenting:
		return "Presenting"
	}
	return "Unknown"
}

// presentStatus is the recoverable part of an acquire or present result.
type presentStatus int

const (
	presentOK presentStatus = iota
	presentSuboptimal
	presentOutOfDate
)

// frameTarget is the GPU side of one frame. The Renderer implements it
// against the device; every method blocks the calling thread only as long
// as the driver does.
type frameTarget interface {
	acquireImage() (int, presentStatus, error)
	recordCommands(slot, imageIndex int) error
	submitCommands(slot int) error
	presentImage(imageIndex int) (presentStatus, error)
	waitQueueIdle() error
}

// Stats counts what the frame loop has done since Initialize.
type Stats struct {
	Frames      int
	Submissions int
	Skipped     int
	Rebuilds    int
	Slot        int
	State       FrameState
}

// frameLoop drives acquire, record, submit and present for one image at a
// time. The queue is waited idle after every present, so at most one frame
// is ever on the GPU and a command buffer is never re-recorded while it
// executes.
type frameLoop struct {
	target frameTarget
	resize *resizeController
	slots  int
	slot   int
	state  FrameState

	frames      int
	submissions int
	skipped     int
}

func newFrameLoop(target frameTarget, resize *resizeController, slots int) *frameLoop {
	return &frameLoop{
		target: target,
		resize: resize,
		slots:  slots,
	}
}

func (f *frameLoop) draw() error {
	if f.resize.suspended {
		f.skipped++
		return nil
	}

	f.state = StateAcquiring
	imageIndex, status, err := f.target.acquireImage()
	if err != nil {
		return err
	}
	if status == presentOutOfDate {
		f.state = StateIdle
		return f.resize.invalidate()
	}

	f.state = StateRecording
	err = f.target.recordCommands(f.slot, imageIndex)
	if err != nil {
		return err
	}

	f.state = StateSubmitting
	err = f.target.submitCommands(f.slot)
	if err != nil {
		return err
	}
	f.submissions++

	f.state = StatePresenting
	status, err = f.target.presentImage(imageIndex)
	if err != nil {
		return err
	}

	err = f.target.waitQueueIdle()
	if err != nil {
		return err
	}

	f.slot = (f.slot + 1) % f.slots
	f.frames++
	f.state = StateIdle

	if status != presentOK {
		return f.resize.invalidate()
	}
	return nil
}

func (f *frameLoop) stats() Stats {
	return Stats{
		Frames:      f.frames,
		Submissions: f.submissions,
		Skipped:     f.skipped,
		Rebuilds:    f.resize.rebuilds,
		Slot:        f.slot,
		State:       f.state,
	}
}
