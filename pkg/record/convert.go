package record

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
)

// Record is the plain structured form of a Representation: four parallel
// arrays plus scalar metadata. It is what gets written to disk.
type Record struct {
	ImageSize     int       `yaml:"image_size"`
	RangeSize     int       `yaml:"range_size"`
	DomainSize    int       `yaml:"domain_size"`
	SymmetryCount int       `yaml:"symmetry_count"`
	Domain        []int     `yaml:"domain,flow"`
	Symmetry      []int     `yaml:"symmetry,flow"`
	Contrast      []float32 `yaml:"contrast,flow"`
	Offset        []float32 `yaml:"offset,flow"`
}

// UnmarshalYAML decodes through RecordFromMap so files may spell the
// symmetry array either "symmetry" or "sym".
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	rec, err := RecordFromMap(m)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// ToRecord flattens the representation into parallel arrays.
func (r *Representation) ToRecord() Record {
	n := len(r.Mappings)
	rec := Record{
		ImageSize:     r.Geometry.ImageSize,
		RangeSize:     r.Geometry.RangeSize,
		DomainSize:    r.Geometry.DomainSize,
		SymmetryCount: r.SymmetryCount,
		Domain:        make([]int, n),
		Symmetry:      make([]int, n),
		Contrast:      make([]float32, n),
		Offset:        make([]float32, n),
	}

	for i, m := range r.Mappings {
		rec.Domain[i] = m.Domain
		rec.Symmetry[i] = m.Symmetry
		rec.Contrast[i] = m.Contrast
		rec.Offset[i] = m.Offset
	}

	return rec
}

// FromRecord builds a representation from parallel arrays. The arrays must
// have equal length and the geometry must tile; index ranges are checked
// later by Validate.
func FromRecord(rec Record) (*Representation, error) {
	geom := config.Geometry{
		ImageSize:  rec.ImageSize,
		RangeSize:  rec.RangeSize,
		DomainSize: rec.DomainSize,
	}
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	n := len(rec.Domain)
	if len(rec.Symmetry) != n || len(rec.Contrast) != n || len(rec.Offset) != n {
		return nil, fmt.Errorf("%w: array lengths differ (domain %d, symmetry %d, contrast %d, offset %d)",
			ErrMalformedRecord, n, len(rec.Symmetry), len(rec.Contrast), len(rec.Offset))
	}

	symmetryCount := rec.SymmetryCount
	if symmetryCount == 0 {
		symmetryCount = blocks.SymmetryCount
	}

	rep := &Representation{
		Geometry:      geom,
		SymmetryCount: symmetryCount,
		Mappings:      make([]Mapping, n),
	}
	for i := range rep.Mappings {
		rep.Mappings[i] = Mapping{
			Domain:   rec.Domain[i],
			Symmetry: rec.Symmetry[i],
			Contrast: rec.Contrast[i],
			Offset:   rec.Offset[i],
		}
	}

	return rep, nil
}

// ToMap returns the representation as a plain map with the keys "domain",
// "symmetry", "contrast", "offset" and the scalar metadata keys.
func (r *Representation) ToMap() map[string]any {
	rec := r.ToRecord()
	return map[string]any{
		"image_size":     rec.ImageSize,
		"range_size":     rec.RangeSize,
		"domain_size":    rec.DomainSize,
		"symmetry_count": rec.SymmetryCount,
		"domain":         rec.Domain,
		"symmetry":       rec.Symmetry,
		"contrast":       rec.Contrast,
		"offset":         rec.Offset,
	}
}

// FromMap converts a plain map (as produced by ToMap or by a generic
// decoder) into a representation.
func FromMap(m map[string]any) (*Representation, error) {
	rec, err := RecordFromMap(m)
	if err != nil {
		return nil, err
	}
	return FromRecord(rec)
}

// RecordFromMap performs the checked numeric conversions for FromMap.
// Array elements may be any Go integer or float type, or []any holding
// them; integer fields reject non-integral values. Missing metadata falls
// back to the default geometry.
func RecordFromMap(m map[string]any) (Record, error) {
	def := config.DefaultGeometry()
	rec := Record{
		ImageSize:     def.ImageSize,
		RangeSize:     def.RangeSize,
		DomainSize:    def.DomainSize,
		SymmetryCount: blocks.SymmetryCount,
	}

	scalars := []struct {
		key string
		dst *int
	}{
		{"image_size", &rec.ImageSize},
		{"range_size", &rec.RangeSize},
		{"domain_size", &rec.DomainSize},
		{"symmetry_count", &rec.SymmetryCount},
	}
	for _, s := range scalars {
		v, ok := m[s.key]
		if !ok {
			continue
		}
		n, err := toInt(v)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, s.key, err)
		}
		*s.dst = n
	}

	var err error
	if rec.Domain, err = intsField(m, "domain"); err != nil {
		return Record{}, err
	}

	symKey := "symmetry"
	if _, ok := m[symKey]; !ok {
		symKey = "sym"
	}
	if rec.Symmetry, err = intsField(m, symKey); err != nil {
		return Record{}, err
	}

	if rec.Contrast, err = floatsField(m, "contrast"); err != nil {
		return Record{}, err
	}
	if rec.Offset, err = floatsField(m, "offset"); err != nil {
		return Record{}, err
	}

	return rec, nil
}

func intsField(m map[string]any, key string) ([]int, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q array", ErrMalformedRecord, key)
	}

	var out []int
	switch a := v.(type) {
	case []int:
		out = append([]int(nil), a...)
	case []int32:
		out = make([]int, len(a))
		for i, x := range a {
			out[i] = int(x)
		}
	case []int64:
		out = make([]int, len(a))
		for i, x := range a {
			out[i] = int(x)
		}
	case []uint8:
		out = make([]int, len(a))
		for i, x := range a {
			out[i] = int(x)
		}
	default:
		items, err := anySlice(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, key, err)
		}
		out = make([]int, len(items))
		for i, x := range items {
			n, err := toInt(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRecord, key, i, err)
			}
			out[i] = n
		}
	}

	return out, nil
}

func floatsField(m map[string]any, key string) ([]float32, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q array", ErrMalformedRecord, key)
	}

	if a, ok := v.([]float32); ok {
		return append([]float32(nil), a...), nil
	}

	items, err := anySlice(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, key, err)
	}

	out := make([]float32, len(items))
	for i, x := range items {
		f, err := toFloat(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRecord, key, i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// anySlice widens the numeric slice types to []any.
func anySlice(v any) ([]any, error) {
	switch a := v.(type) {
	case []any:
		return a, nil
	case []float64:
		out := make([]any, len(a))
		for i, x := range a {
			out[i] = x
		}
		return out, nil
	case []float32:
		out := make([]any, len(a))
		for i, x := range a {
			out[i] = x
		}
		return out, nil
	case []int:
		out := make([]any, len(a))
		for i, x := range a {
			out[i] = x
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported array type %T", v)
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		return integral(float64(x))
	case float64:
		return integral(x)
	default:
		return 0, fmt.Errorf("unsupported integer type %T", v)
	}
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("value %v is not an integer", f)
	}
	return int(f), nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("unsupported number type %T", v)
	}
}
