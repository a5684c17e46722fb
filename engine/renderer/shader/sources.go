package shader

import _ "embed"

// FractalComputeSource is the escape-time compute program. It writes one texel of the canvas
// storage texture (group 0, binding 0) per invocation and reads FractalParams from binding 1.
//
//go:embed shaders/fractal.wgsl
var FractalComputeSource string

// PresentVertexSource passes the fullscreen triangle through with its texture coordinates.
//
//go:embed shaders/present_vertex.wgsl
var PresentVertexSource string

// PresentFragmentSource samples the canvas texture.
//
//go:embed shaders/present_fragment.wgsl
var PresentFragmentSource string

// Keys used to look up the embedded programs.
const (
	KeyFractalCompute  = "fractal_compute"
	KeyPresentVertex   = "present_vertex"
	KeyPresentFragment = "present_fragment"
)

// Programs parses and validates the three embedded programs.
//
// Returns:
//   - compute: the fractal compute shader
//   - vertex: the present vertex shader
//   - fragment: the present fragment shader
//   - err: the first parse or validation failure
func Programs() (compute, vertex, fragment Shader, err error) {
	if compute, err = NewShaderFromSource(KeyFractalCompute, ShaderTypeCompute, FractalComputeSource); err != nil {
		return nil, nil, nil, err
	}
	if vertex, err = NewShaderFromSource(KeyPresentVertex, ShaderTypeVertex, PresentVertexSource); err != nil {
		return nil, nil, nil, err
	}
	if fragment, err = NewShaderFromSource(KeyPresentFragment, ShaderTypeFragment, PresentFragmentSource); err != nil {
		return nil, nil, nil, err
	}
	return compute, vertex, fragment, nil
}
