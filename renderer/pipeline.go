package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/pegasus-engine/pegasus/assets"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func vertexBindingDescription() []core1_0.VertexInputBindingDescription {
	v := assets.Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func vertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := assets.Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}

// Pipeline is immutable after creation. Viewport and scissor are dynamic,
// so it does not depend on the swapchain extent.
type Pipeline struct {
	driver   core1_0.DeviceDriver
	layout   core1_0.PipelineLayout
	pipeline core1_0.Pipeline
}

// BuildPipeline creates the graphics pipeline for renderPass from SPIR-V
// vertex and fragment code. The shader modules are released before it
// returns.
func BuildPipeline(driver core1_0.DeviceDriver, renderPass core1_0.RenderPass, vertexCode, fragmentCode []uint32) (*Pipeline, error) {
	vertShader, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: vertexCode,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create vertex shader module")
	}
	defer driver.DestroyShaderModule(vertShader, nil)

	fragShader, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: fragmentCode,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create fragment shader module")
	}
	defer driver.DestroyShaderModule(fragShader, nil)

	p := &Pipeline{driver: driver}
	p.layout, _, err = driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline layout")
	}

	pipelines, _, err := driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: vertShader,
					Name:   "main",
				},
				{
					Stage:  core1_0.StageFragment,
					Module: fragShader,
					Name:   "main",
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   vertexBindingDescription(),
				VertexAttributeDescriptions: vertexAttributeDescriptions(),
			},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               core1_0.PrimitiveTopologyTriangleList,
				PrimitiveRestartEnable: false,
			},
			// Counts only; the values are set while recording.
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{{}},
				Scissors:  []core1_0.Rect2D{{}},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				DepthClampEnable:        false,
				RasterizerDiscardEnable: false,

				PolygonMode: core1_0.PolygonModeFill,
				CullMode:    core1_0.CullModeNone,
				FrontFace:   core1_0.FrontFaceCounterClockwise,

				DepthBiasEnable: false,

				LineWidth: 1.0,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				SampleShadingEnable:  false,
				RasterizationSamples: core1_0.Samples1,
				MinSampleShading:     1.0,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				LogicOpEnabled: false,
				LogicOp:        core1_0.LogicOpCopy,

				BlendConstants: [4]float32{0, 0, 0, 0},
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						BlendEnabled:   false,
						ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
					},
				},
			},
			DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
				DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
			},
			Layout:            p.layout,
			RenderPass:        renderPass,
			Subpass:           0,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		p.Destroy()
		return nil, errors.Wrap(err, "create graphics pipeline")
	}
	p.pipeline = pipelines[0]

	return p, nil
}

func (p *Pipeline) Bind(cmd core1_0.CommandBuffer) {
	p.driver.CmdBindPipeline(cmd, core1_0.PipelineBindPointGraphics, p.pipeline)
}

func (p *Pipeline) Destroy() {
	if p == nil {
		return
	}
	if p.pipeline.Initialized() {
		p.driver.DestroyPipeline(p.pipeline, nil)
		p.pipeline = core1_0.Pipeline{}
	}
	if p.layout.Initialized() {
		p.driver.DestroyPipelineLayout(p.layout, nil)
		p.layout = core1_0.PipelineLayout{}
	}
}
