// Package srcast defines the high-level source expression tree the
// front end parses before lowering it to IR-L.
//
// The rewrite core never builds this tree itself; it receives it from
// the front end and walks it during unlowering to reconstruct which
// expression each IR-L instruction came from. Nodes carry a stable
// NodeID and the source span they cover. A parent lookup is kept on the
// Tree for upstream consumers; nothing in this module uses it.
package srcast
