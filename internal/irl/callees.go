package irl

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// PackagedFunc identifies a function the registry knows about.
type PackagedFunc struct {
	Path string
	Name string
}

func (f PackagedFunc) String() string {
	if f.Path == "" {
		return f.Name
	}
	return f.Path + "::" + f.Name
}

// CalleeKind classifies how a call target interacts with pointer
// rewriting.
type CalleeKind int

const (
	// CalleeOrdinary gets no bespoke handling.
	CalleeOrdinary CalleeKind = iota

	// CalleeOffset is pointer arithmetic: ptr.offset(i) and friends.
	CalleeOffset

	// CalleeAsPtr materializes a raw pointer out of a safe container:
	// as_ptr/as_mut_ptr-style accessors.
	CalleeAsPtr
)

var calleeKindValueMap = map[CalleeKind]string{
	CalleeOrdinary: "ordinary",
	CalleeOffset:   "offset",
	CalleeAsPtr:    "as-ptr",
}

func (k CalleeKind) String() string {
	v, ok := calleeKindValueMap[k]
	if !ok {
		return fmt.Sprintf("invalid(%d)", k)
	}

	return v
}

// UnmarshalText for setting values with configs, CLI, etc.
func (k *CalleeKind) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for key, v := range calleeKindValueMap {
		if v == text {
			*k = key
			return nil
		}
	}

	return fmt.Errorf("unknown callee kind %q", text)
}

// CalleeTable resolves call targets to their classification.
type CalleeTable struct {
	known map[PackagedFunc]CalleeKind
}

// NewCalleeTable merges custom entries over the predefined set. Custom
// entries never override predefined ones.
func NewCalleeTable(custom map[PackagedFunc]CalleeKind) *CalleeTable {
	predefined := map[PackagedFunc]CalleeKind{
		// Pointer arithmetic.
		{Path: "core::ptr", Name: "offset"}:          CalleeOffset,
		{Path: "core::ptr", Name: "add"}:             CalleeOffset,
		{Path: "core::ptr", Name: "sub"}:             CalleeOffset,
		{Path: "core::ptr", Name: "wrapping_offset"}: CalleeOffset,

		// Raw-pointer accessors of safe containers.
		{Path: "core::slice", Name: "as_ptr"}:     CalleeAsPtr,
		{Path: "core::slice", Name: "as_mut_ptr"}: CalleeAsPtr,
		{Path: "alloc::vec", Name: "as_ptr"}:      CalleeAsPtr,
		{Path: "alloc::vec", Name: "as_mut_ptr"}:  CalleeAsPtr,
	}

	if custom == nil {
		custom = make(map[PackagedFunc]CalleeKind)
	} else {
		custom = maps.Clone(custom)
	}

	// Merge custom and predefined defs.
	maps.Insert(custom, maps.All(predefined))

	return &CalleeTable{known: custom}
}

// Classify resolves the callee operand of a call terminator. Targets
// whose type is not a known function item are ordinary.
func (t *CalleeTable) Classify(fn Operand) CalleeKind {
	c, ok := fn.(*OperandConst)
	if !ok {
		return CalleeOrdinary
	}
	def, ok := c.Ty.(*TyFnDef)
	if !ok {
		return CalleeOrdinary
	}

	return t.known[def.Ref]
}

type calleeConfig struct {
	Callees []struct {
		Path string     `yaml:"path"`
		Name string     `yaml:"name"`
		Kind CalleeKind `yaml:"kind"`
	} `yaml:"callees"`
}

// ParseCalleeConfig loads custom callee entries from YAML:
//
//	callees:
//	  - path: mylib::buf
//	    name: ptr_at
//	    kind: offset
func ParseCalleeConfig(data []byte) (map[PackagedFunc]CalleeKind, error) {
	var cfg calleeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse callees config: %w", err)
	}

	out := make(map[PackagedFunc]CalleeKind, len(cfg.Callees))
	for _, c := range cfg.Callees {
		if c.Name == "" {
			return nil, fmt.Errorf("parse callees config: entry with empty name")
		}
		out[PackagedFunc{Path: c.Path, Name: c.Name}] = c.Kind
	}

	return out, nil
}
