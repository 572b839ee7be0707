package assets

//go:generate glslc shaders/triangle.vert -o shaders/triangle.vert.spv
//go:generate glslc shaders/triangle.frag -o shaders/triangle.frag.spv
