package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func TestGraphicsPresentFamily(t *testing.T) {
	families := []core1_0.QueueFlags{
		core1_0.QueueTransfer,
		core1_0.QueueGraphics | core1_0.QueueCompute,
		core1_0.QueueGraphics,
	}

	tests := []struct {
		name     string
		present  func(int) (bool, error)
		expected int
		found    bool
	}{
		{"no presentation required", nil, 1, true},
		{"first graphics family presents", func(int) (bool, error) { return true, nil }, 1, true},
		{"only last family presents", func(index int) (bool, error) { return index == 2, nil }, 2, true},
		{"transfer family presents", func(index int) (bool, error) { return index == 0, nil }, 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			index, found, err := graphicsPresentFamily(families, test.present)
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if found != test.found {
				t.Fatalf("expected found=%t, got %t", test.found, found)
			}
			if found && index != test.expected {
				t.Errorf("expected family %d, got %d", test.expected, index)
			}
		})
	}
}

func TestGraphicsPresentFamilyError(t *testing.T) {
	failure := errors.New("lost surface")
	_, _, err := graphicsPresentFamily([]core1_0.QueueFlags{core1_0.QueueGraphics}, func(int) (bool, error) {
		return false, failure
	})
	if !errors.Is(err, failure) {
		t.Errorf("expected the query error, got %+v", err)
	}
}

func TestFindMemoryType(t *testing.T) {
	properties := &core1_0.PhysicalDeviceMemoryProperties{
		MemoryTypes: []core1_0.MemoryType{
			{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
			{PropertyFlags: core1_0.MemoryPropertyHostVisible},
			{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
		},
	}

	index, err := findMemoryType(properties, 0b111, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if index != 2 {
		t.Errorf("expected memory type 2, got %d", index)
	}

	index, err = findMemoryType(properties, 0b110, core1_0.MemoryPropertyHostVisible)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if index != 1 {
		t.Errorf("expected memory type 1, got %d", index)
	}

	_, err = findMemoryType(properties, 0b010, core1_0.MemoryPropertyDeviceLocal)
	if err == nil {
		t.Error("expected no memory type to match")
	}
}

func TestFirstQualifyingSkipsFailedDevices(t *testing.T) {
	failure := errors.New("query failed")
	devices := []string{"broken", "no present", "discrete", "integrated"}

	var skipped []int
	device, ok := firstQualifying(devices, func(name string) (bool, error) {
		switch name {
		case "broken":
			return false, failure
		case "no present":
			return false, nil
		}
		return true, nil
	}, func(index int, err error) {
		if !errors.Is(err, failure) {
			t.Errorf("unexpected skip error %+v", err)
		}
		skipped = append(skipped, index)
	})

	if !ok || device != "discrete" {
		t.Errorf("expected the first qualifying device, got %q (found=%t)", device, ok)
	}
	if len(skipped) != 1 || skipped[0] != 0 {
		t.Errorf("expected device 0 to be skipped, got %v", skipped)
	}
}

func TestFirstQualifyingNone(t *testing.T) {
	_, ok := firstQualifying([]int{1, 2}, func(int) (bool, error) {
		return false, errors.New("query failed")
	}, func(int, error) {})
	if ok {
		t.Error("expected no device when every query fails")
	}
}
