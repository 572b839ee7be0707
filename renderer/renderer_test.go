package renderer

import (
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func TestClassify(t *testing.T) {
	failure := errors.New("device lost")

	tests := []struct {
		name     string
		res      common.VkResult
		err      error
		expected presentStatus
		fails    bool
	}{
		{"success", core1_0.VKSuccess, nil, presentOK, false},
		{"suboptimal", khr_swapchain.VKSuboptimal, nil, presentSuboptimal, false},
		{"out of date", khr_swapchain.VKErrorOutOfDate, failure, presentOutOfDate, false},
		{"device lost", core1_0.VKErrorDeviceLost, failure, presentOK, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, err := classify(test.res, test.err)
			if (err != nil) != test.fails {
				t.Fatalf("expected failure=%t, got %+v", test.fails, err)
			}
			if status != test.expected {
				t.Errorf("expected status %d, got %d", test.expected, status)
			}
		})
	}
}

func TestSeverityLevel(t *testing.T) {
	tests := []struct {
		severity ext_debug_utils.DebugUtilsMessageSeverityFlags
		expected slog.Level
	}{
		{ext_debug_utils.SeverityError, slog.LevelError},
		{ext_debug_utils.SeverityWarning, slog.LevelWarn},
		{ext_debug_utils.SeverityInfo, slog.LevelInfo},
		{ext_debug_utils.SeverityVerbose, slog.LevelDebug},
	}

	for _, test := range tests {
		level := severityLevel(test.severity)
		if level != test.expected {
			t.Errorf("severity %v: expected %s, got %s", test.severity, test.expected, level)
		}
	}
}

func TestOptionsNormalize(t *testing.T) {
	opts, err := Options{}.normalize()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if opts.InFlightCount != DefaultInFlightCount {
		t.Errorf("expected %d in-flight buffers, got %d", DefaultInFlightCount, opts.InFlightCount)
	}
	if opts.Logger == nil {
		t.Error("expected a discard logger")
	}

	_, err = Options{InFlightCount: -1}.normalize()
	if err == nil {
		t.Error("expected a negative in-flight count to be rejected")
	}
}

func TestInitializeRejectsEmptySurface(t *testing.T) {
	_, err := Initialize(nil, 0, 600, DefaultOptions(), Scene{})
	if !errors.Is(err, ErrFatalInit) {
		t.Errorf("expected a fatal init error, got %+v", err)
	}
}

func TestClosedRenderer(t *testing.T) {
	r := &Renderer{closed: true}

	if !errors.Is(r.DrawFrame(), ErrClosed) {
		t.Error("expected DrawFrame to report a closed renderer")
	}
	if !errors.Is(r.NotifyResize(800, 600), ErrClosed) {
		t.Error("expected NotifyResize to report a closed renderer")
	}
	r.Shutdown()
}

func TestRendererStopsAfterDriverError(t *testing.T) {
	var destroyed []string
	target := &fakeTarget{images: 3, submitErr: driverFailure(errors.New("device lost"), "submit frame")}
	r := newTrackedRenderer(target, &destroyed)

	err := r.DrawFrame()
	if !errors.Is(err, ErrDriver) {
		t.Fatalf("expected a driver error, got %+v", err)
	}

	target.calls = nil
	err = r.DrawFrame()
	if !errors.Is(err, ErrDriver) {
		t.Errorf("expected the earlier driver error again, got %+v", err)
	}
	err = r.NotifyResize(1024, 768)
	if !errors.Is(err, ErrDriver) {
		t.Errorf("expected NotifyResize to report the earlier driver error, got %+v", err)
	}
	if len(target.calls) != 0 {
		t.Errorf("expected no GPU calls after a driver error, got %v", target.calls)
	}

	r.Shutdown()
	if len(destroyed) != len(teardownOrder) {
		t.Errorf("expected a full teardown after a driver error, got %v", destroyed)
	}
}
