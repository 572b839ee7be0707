package renderer

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/pegasus-engine/pegasus/assets"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// GeometryBuffer holds draw data in device-local memory. It keeps a
// non-owning pointer to the device, which must outlive it.
type GeometryBuffer struct {
	device *GraphicsDevice

	vertexBuffer core1_0.Buffer
	vertexMemory core1_0.DeviceMemory
	indexBuffer  core1_0.Buffer
	indexMemory  core1_0.DeviceMemory

	indexed   bool
	drawCount int
}

// UploadGeometry copies geometry to the GPU through host-visible staging
// buffers. The copy runs on the graphics queue and has completed when
// UploadGeometry returns.
func UploadGeometry(device *GraphicsDevice, pool core1_0.CommandPool, geometry assets.Geometry) (*GeometryBuffer, error) {
	if len(geometry.Vertices) == 0 {
		return nil, errors.New("geometry has no vertices")
	}

	g := &GeometryBuffer{
		device:    device,
		indexed:   geometry.Indexed(),
		drawCount: geometry.DrawCount(),
	}

	var err error
	g.vertexBuffer, g.vertexMemory, err = g.upload(pool, geometry.Vertices, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		g.Destroy()
		return nil, errors.Wrap(err, "upload vertices")
	}

	if g.indexed {
		g.indexBuffer, g.indexMemory, err = g.upload(pool, geometry.Indices, core1_0.BufferUsageIndexBuffer)
		if err != nil {
			g.Destroy()
			return nil, errors.Wrap(err, "upload indices")
		}
	}

	return g, nil
}

func (g *GeometryBuffer) upload(pool core1_0.CommandPool, data any, usage core1_0.BufferUsageFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	bufferSize := binary.Size(data)

	stagingBuffer, stagingBufferMemory, err := g.device.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	defer g.device.destroyBuffer(stagingBuffer, stagingBufferMemory)
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	err = writeData(g.device.Driver, stagingBufferMemory, 0, data)
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	buffer, memory, err := g.device.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		g.device.destroyBuffer(buffer, memory)
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	err = g.device.copyBuffer(pool, stagingBuffer, buffer, bufferSize)
	if err != nil {
		g.device.destroyBuffer(buffer, memory)
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	return buffer, memory, nil
}

func (g *GeometryBuffer) Bind(cmd core1_0.CommandBuffer) {
	g.device.Driver.CmdBindVertexBuffers(cmd, 0, []core1_0.Buffer{g.vertexBuffer}, []int{0})
	if g.indexed {
		g.device.Driver.CmdBindIndexBuffer(cmd, g.indexBuffer, 0, core1_0.IndexTypeUInt32)
	}
}

// Draw issues one draw call covering the whole geometry.
func (g *GeometryBuffer) Draw(cmd core1_0.CommandBuffer) {
	if g.indexed {
		g.device.Driver.CmdDrawIndexed(cmd, g.drawCount, 1, 0, 0, 0)
		return
	}
	g.device.Driver.CmdDraw(cmd, g.drawCount, 1, 0, 0)
}

func (g *GeometryBuffer) Destroy() {
	if g == nil {
		return
	}
	g.device.destroyBuffer(g.indexBuffer, g.indexMemory)
	g.device.destroyBuffer(g.vertexBuffer, g.vertexMemory)
	g.indexBuffer, g.indexMemory = core1_0.Buffer{}, core1_0.DeviceMemory{}
	g.vertexBuffer, g.vertexMemory = core1_0.Buffer{}, core1_0.DeviceMemory{}
}
