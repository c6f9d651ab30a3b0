package fact

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PointerID is the opaque identifier the front end assigns to every
// pointer-typed value and place. The zero value means "no pointer": a
// value the inference engine never classified.
type PointerID int

// NoPointer is the PointerID of unclassified values.
const NoPointer PointerID = 0

// IsNone reports whether the id refers to no pointer at all.
func (id PointerID) IsNone() bool {
	return id == NoPointer
}

func (id PointerID) String() string {
	if id.IsNone() {
		return "ptr(none)"
	}
	return fmt.Sprintf("ptr(%d)", int(id))
}

// Table is the read-only permission/flag lookup for one analysis unit.
type Table struct {
	perms map[PointerID]Perm
	flags map[PointerID]Flag
}

// NewTable is the [Table] constructor.
func NewTable() *Table {
	return &Table{
		perms: make(map[PointerID]Perm),
		flags: make(map[PointerID]Flag),
	}
}

// Set records the classification of one pointer. Meant for the front
// end and for test fixtures; the rewrite core itself only reads.
func (t *Table) Set(id PointerID, perms Perm, flags Flag) {
	if id.IsNone() {
		panic("fact: cannot classify the none pointer")
	}
	t.perms[id] = perms
	t.flags[id] = flags
}

// Perms returns the permission bits of id. Unknown ids have no bits set.
func (t *Table) Perms(id PointerID) Perm {
	return t.perms[id]
}

// Flags returns the flag bits of id. Unknown ids have no bits set.
func (t *Table) Flags(id PointerID) Flag {
	return t.flags[id]
}

// Len is the number of classified pointers.
func (t *Table) Len() int {
	return len(t.perms)
}

type tableConfig struct {
	Pointers []struct {
		ID    int    `yaml:"id"`
		Perms []Perm `yaml:"perms"`
		Flags []Flag `yaml:"flags"`
	} `yaml:"pointers"`
}

// ParseTable loads a fact table from its YAML form:
//
//	pointers:
//	  - id: 1
//	    perms: [read, write, unique]
//	  - id: 2
//	    perms: [read]
//	    flags: [cell]
func ParseTable(data []byte) (*Table, error) {
	var cfg tableConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse facts config: %w", err)
	}

	t := NewTable()
	for _, p := range cfg.Pointers {
		if p.ID == int(NoPointer) {
			return nil, fmt.Errorf("parse facts config: pointer id %d is reserved", p.ID)
		}

		var perms Perm
		for _, v := range p.Perms {
			perms |= v
		}
		var flags Flag
		for _, v := range p.Flags {
			flags |= v
		}
		t.Set(PointerID(p.ID), perms, flags)
	}

	return t, nil
}
