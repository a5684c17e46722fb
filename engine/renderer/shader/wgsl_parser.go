package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)

	// memberRegex skips leading attributes and captures the member name and type.
	memberRegex = regexp.MustCompile(`^(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)$`)

	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// bindingRegex matches module-scope resources, e.g.
	//   @group(0) @binding(1) var<uniform> params: FractalParams;
	//   @group(0) @binding(1) var canvas_sampler: sampler;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	entryRegexes = map[ShaderType]*regexp.Regexp{
		ShaderTypeCompute:  regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`),
		ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
	}
)

// parseEntryPoint returns the name of the first function carrying the stage attribute for
// shaderType, or "" when there is none.
func parseEntryPoint(source string, shaderType ShaderType) string {
	re, ok := entryRegexes[shaderType]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseWorkgroupSize reads @workgroup_size. Missing dimensions, and a missing attribute, are 1.
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupSizeRegex.FindStringSubmatch(stripComments(source))
	if m == nil {
		return size
	}
	for i, dim := range m[1:] {
		if dim == "" {
			continue
		}
		if v, err := strconv.ParseUint(dim, 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct, keyed in
// declaration order. Structs with members that have no vertex format are left out.
func parseVertexLayouts(source string) map[int][]wgpu.VertexBufferLayout {
	layouts := make(map[int][]wgpu.VertexBufferLayout)
	for _, s := range parseStructs(stripComments(source)) {
		if !s.feedsVertexBuffer() {
			continue
		}
		if layout, ok := vertexBufferLayout(s); ok {
			layouts[len(layouts)] = []wgpu.VertexBufferLayout{layout}
		}
	}
	return layouts
}

// parseBindGroupLayouts collects the @group/@binding resources of source into one layout
// descriptor per group, entries sorted by binding, every entry visible to visibility.
// Uniform entries carry the size of their struct as MinBindingSize.
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: resource variable names keyed by group, then binding
//   - error: if a resource is of a kind the renderer does not bind
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	cleaned := stripComments(source)
	sizes := structLayouts(parseStructs(cleaned))

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space, name, typ := strings.TrimSpace(m[3]), m[4], strings.TrimSpace(m[5])

		entry, err := bindingEntry(uint32(binding), visibility, space, typ)
		if err != nil {
			return nil, nil, fmt.Errorf("@group(%d) @binding(%d) %s: %w", group, binding, name, err)
		}
		if entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
			if l, ok := resolveLayout(typ, sizes); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = name
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		descriptors[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return descriptors, names, nil
}

// parseStructs returns every struct declared in comment-free source.
func parseStructs(source string) []structDecl {
	var structs []structDecl
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		structs = append(structs, structDecl{name: m[1], members: parseMembers(m[2])})
	}
	return structs
}

// parseMembers splits a struct body into members. Member types here never contain a
// comma, so the body splits on every one.
func parseMembers(body string) []structMember {
	var members []structMember
	for _, decl := range strings.Split(body, ",") {
		decl = strings.TrimSpace(decl)
		m := memberRegex.FindStringSubmatch(decl)
		if m == nil {
			continue
		}
		member := structMember{
			name:     m[1],
			typ:      strings.TrimSpace(m[2]),
			location: -1,
			builtin:  builtinRegex.MatchString(decl),
		}
		if loc := locationRegex.FindStringSubmatch(decl); loc != nil {
			member.location, _ = strconv.Atoi(loc[1])
		}
		members = append(members, member)
	}
	return members
}
