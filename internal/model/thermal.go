package model

// ThermalImage is the decoded content of an FFF container.
// It is built once by the binary reader (or by ImageBuilder) and never
// modified afterwards; derived data such as order statistics lives
// outside of it.
type ThermalImage struct {
	creator    string
	width      int
	height     int
	raw        []uint16
	properties *Properties
	palette    []Triple
}

// Creator returns the trimmed creator field from the file header
// (seen: "", "MTX IR", "CAMCTRL").
func (t *ThermalImage) Creator() string { return t.creator }

// Width returns the raw image width in pixels.
func (t *ThermalImage) Width() int { return t.width }

// Height returns the raw image height in pixels.
func (t *ThermalImage) Height() int { return t.height }

// Len returns the number of raw samples.
func (t *ThermalImage) Len() int { return len(t.raw) }

// Raw returns the raw sample at index i (row-major).
func (t *ThermalImage) Raw(i int) uint16 { return t.raw[i] }

// RawValues returns a copy of the raw samples in row-major order.
func (t *ThermalImage) RawValues() []uint16 {
	out := make([]uint16, len(t.raw))
	copy(out, t.raw)
	return out
}

// Properties returns the decoded properties keyed by name.
func (t *ThermalImage) Properties() *Properties { return t.properties }

// Property is a shortcut for Properties().Get(name).
func (t *ThermalImage) Property(name string) (Property, bool) {
	return t.properties.Get(name)
}

// HasPalette reports whether the container carried a Palette record.
func (t *ThermalImage) HasPalette() bool { return t.palette != nil }

// Palette returns a copy of the embedded palette (YCbCr triples).
func (t *ThermalImage) Palette() []Triple {
	if t.palette == nil {
		return nil
	}
	out := make([]Triple, len(t.palette))
	copy(out, t.palette)
	return out
}

// WithProperties returns a copy of the image whose properties are replaced
// by the given overrides. Overrides for names that are not present are
// appended. The receiver is left untouched.
func (t *ThermalImage) WithProperties(overrides ...Property) *ThermalImage {
	b := NewImageBuilder().
		Creator(t.creator).
		Size(t.width, t.height).
		RawValues(t.raw)
	if t.palette != nil {
		b.Palette(t.palette)
	}
	replaced := make(map[string]Property, len(overrides))
	for _, p := range overrides {
		replaced[p.Name] = p
	}
	for _, p := range t.properties.All() {
		if r, ok := replaced[p.Name]; ok {
			p = r
			delete(replaced, p.Name)
		}
		b.AddProperty(p)
	}
	for _, p := range overrides {
		if _, ok := replaced[p.Name]; ok {
			b.AddProperty(p)
			delete(replaced, p.Name)
		}
	}
	return b.Build()
}

// ImageBuilder assembles a ThermalImage. The builder may be reused after
// Build; the built image does not share memory with it.
type ImageBuilder struct {
	creator string
	width   int
	height  int
	raw     []uint16
	props   *Properties
	palette []Triple
}

// NewImageBuilder creates an empty builder
func NewImageBuilder() *ImageBuilder {
	return &ImageBuilder{props: NewProperties()}
}

func (b *ImageBuilder) Creator(s string) *ImageBuilder {
	b.creator = s
	return b
}

func (b *ImageBuilder) Size(width, height int) *ImageBuilder {
	b.width, b.height = width, height
	return b
}

func (b *ImageBuilder) RawValues(raw []uint16) *ImageBuilder {
	b.raw = append(b.raw[:0], raw...)
	return b
}

// Palette sets the embedded palette. A non-nil empty slice marks a Palette
// record with zero colors.
func (b *ImageBuilder) Palette(p []Triple) *ImageBuilder {
	b.palette = append(make([]Triple, 0, len(p)), p...)
	return b
}

// AddProperty adds p unless a property with the same name already exists.
// It reports whether p was added.
func (b *ImageBuilder) AddProperty(p Property) bool {
	return b.props.add(p)
}

// Build returns the immutable image.
func (b *ImageBuilder) Build() *ThermalImage {
	img := &ThermalImage{
		creator:    b.creator,
		width:      b.width,
		height:     b.height,
		raw:        append([]uint16(nil), b.raw...),
		properties: b.props.clone(),
	}
	if b.raw == nil {
		img.raw = []uint16{}
	}
	if b.palette != nil {
		img.palette = append(make([]Triple, 0, len(b.palette)), b.palette...)
	}
	return img
}

// Properties is an insertion-ordered set of properties keyed by name.
type Properties struct {
	list  []Property
	index map[string]int
}

// NewProperties creates an empty property set
func NewProperties() *Properties {
	return &Properties{index: make(map[string]int)}
}

func (ps *Properties) add(p Property) bool {
	if _, dup := ps.index[p.Name]; dup {
		return false
	}
	ps.index[p.Name] = len(ps.list)
	ps.list = append(ps.list, p)
	return true
}

func (ps *Properties) clone() *Properties {
	out := &Properties{
		list:  append([]Property(nil), ps.list...),
		index: make(map[string]int, len(ps.index)),
	}
	for k, v := range ps.index {
		out.index[k] = v
	}
	return out
}

// Get returns the property with the given name.
func (ps *Properties) Get(name string) (Property, bool) {
	if ps == nil {
		return Property{}, false
	}
	i, ok := ps.index[name]
	if !ok {
		return Property{}, false
	}
	return ps.list[i], true
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.list)
}

// All returns the properties in decode order.
func (ps *Properties) All() []Property {
	if ps == nil {
		return nil
	}
	return append([]Property(nil), ps.list...)
}

// Category returns the properties decoded from records of one kind, in
// decode order.
func (ps *Properties) Category(category string) []Property {
	var out []Property
	for _, p := range ps.All() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Property is one decoded field of a Camera, Palette or PiP record.
type Property struct {
	Name     string // Unique within a ThermalImage
	Category string // Owning record kind, e.g. "Camera"
	Value    Value
}
