package bind_group_provider

import "testing"

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("fractal")
	if got, want := p.Label(), "fractal"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if p.BindGroup() != nil || p.VertexBuffer() != nil || p.VertexCount() != 0 {
		t.Error("new provider holds GPU resources")
	}
	if p.Buffers() == nil || p.TextureViews() == nil || p.Samplers() == nil {
		t.Error("resource maps not initialized")
	}
}

func TestReleaseWithoutResources(t *testing.T) {
	p := NewBindGroupProvider("present", WithBuffer(1, nil))
	p.ReleaseBindGroup()
	p.Release()
	if len(p.Buffers()) != 0 {
		t.Errorf("Buffers() = %d entries after Release, want 0", len(p.Buffers()))
	}
	// second release is a no-op
	p.Release()
}
