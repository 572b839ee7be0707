package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// frameSync is the one semaphore pair shared by every frame. A single pair
// is enough because the queue drains before the next acquire.
type frameSync struct {
	imageAvailable    core1_0.Semaphore
	renderingFinished core1_0.Semaphore
}

func createFrameSync(driver core1_0.DeviceDriver) (*frameSync, error) {
	s := &frameSync{}

	var err error
	s.imageAvailable, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, errors.Wrap(err, "create image-available semaphore")
	}

	s.renderingFinished, _, err = driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		driver.DestroySemaphore(s.imageAvailable, nil)
		return nil, errors.Wrap(err, "create rendering-finished semaphore")
	}

	return s, nil
}

func (s *frameSync) destroy(driver core1_0.DeviceDriver) {
	if s == nil {
		return
	}
	if s.renderingFinished.Initialized() {
		driver.DestroySemaphore(s.renderingFinished, nil)
	}
	if s.imageAvailable.Initialized() {
		driver.DestroySemaphore(s.imageAvailable, nil)
	}
}
