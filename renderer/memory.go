package renderer

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (d *GraphicsDevice) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	buffer, _, err := d.Driver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Wrap(err, "create buffer")
	}

	memRequirements := d.Driver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := findMemoryType(d.MemoryProperties, memRequirements.MemoryTypeBits, properties)
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, err
	}

	memory, _, err := d.Driver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, errors.Wrap(err, "allocate buffer memory")
	}

	_, err = d.Driver.BindBufferMemory(buffer, memory, 0)
	if err != nil {
		return buffer, memory, errors.Wrap(err, "bind buffer memory")
	}
	return buffer, memory, nil
}

func (d *GraphicsDevice) destroyBuffer(buffer core1_0.Buffer, memory core1_0.DeviceMemory) {
	if buffer.Initialized() {
		d.Driver.DestroyBuffer(buffer, nil)
	}
	if memory.Initialized() {
		d.Driver.FreeMemory(memory, nil)
	}
}

// findMemoryType returns the first memory type allowed by typeFilter that
// has every requested property.
func findMemoryType(memProperties *core1_0.PhysicalDeviceMemoryProperties, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("no memory type matches filter %#x with properties %v", typeFilter, properties)
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)
	if bufferSize < 0 {
		return errors.AssertionFailedf("cannot encode %T for upload", data)
	}

	memoryPtr, _, err := driver.MapMemory(memory, offset, bufferSize, 0)
	if err != nil {
		return errors.Wrap(err, "map memory")
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "encode upload data")
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}

// runOnce records a command buffer from pool with record, submits it and
// waits for the queue to drain.
func (d *GraphicsDevice) runOnce(pool core1_0.CommandPool, record func(core1_0.CommandBuffer) error) error {
	buffers, _, err := d.Driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return errors.Wrap(err, "allocate one-shot command buffer")
	}

	buffer := buffers[0]
	defer d.Driver.FreeCommandBuffers(buffer)

	_, err = d.Driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return errors.Wrap(err, "begin one-shot command buffer")
	}

	err = record(buffer)
	if err != nil {
		return err
	}

	_, err = d.Driver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "end one-shot command buffer")
	}

	_, err = d.Driver.QueueSubmit(d.Queue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return errors.Wrap(err, "submit one-shot command buffer")
	}

	_, err = d.Driver.QueueWaitIdle(d.Queue)
	if err != nil {
		return errors.Wrap(err, "wait for one-shot command buffer")
	}
	return nil
}

func (d *GraphicsDevice) copyBuffer(pool core1_0.CommandPool, srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, size int) error {
	return d.runOnce(pool, func(buffer core1_0.CommandBuffer) error {
		return d.Driver.CmdCopyBuffer(buffer, srcBuffer, dstBuffer,
			core1_0.BufferCopy{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		)
	})
}
