// Package graph assembles the GLSL fire program from a graph of expression
// nodes. Each node owns one shader function; shared nodes are emitted once,
// dependencies first, so custom graphs can reuse the stock pieces.
package graph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strconv"
)

// Node is one GLSL function in the fire program. AppendName must be unique
// per distinct body; two nodes may share a name only when their bodies are
// byte-identical, in which case the function is emitted once.
type Node interface {
	AppendName(dst []byte) []byte
	AppendBody(dst []byte) []byte
	Inputs() []Node
}

// Programmer turns node graphs into fragment function sections.
type Programmer struct {
	names map[uint64]uint64
}

func NewProgrammer() *Programmer {
	return &Programmer{names: make(map[uint64]uint64)}
}

// WriteFunctions emits every distinct function reachable from root into w,
// dependencies before dependents.
func (p *Programmer) WriteFunctions(w *bytes.Buffer, root Node) error {
	clear(p.names)
	nodes := collectNodes(root)
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		name := node.AppendName(nil)
		body := node.AppendBody(nil)
		nameHash := hashBytes(name, 0)
		bodyHash := hashBytes(body, nameHash)
		if prev, seen := p.names[nameHash]; seen {
			if prev == bodyHash {
				continue
			}
			return fmt.Errorf("node name %q reused with a different body", name)
		}
		p.names[nameHash] = bodyHash
		w.Write(body)
		w.WriteByte('\n')
	}
	return nil
}

// collectNodes lists the graph breadth-first starting at root, duplicates
// included; reverse iteration then yields dependencies first.
func collectNodes(root Node) []Node {
	nodes := []Node{root}
	for i := 0; i < len(nodes); i++ {
		nodes = append(nodes, nodes[i].Inputs()...)
	}
	return nodes
}

func hashBytes(b []byte, seed uint64) uint64 {
	h := fnv.New64a()
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	h.Write(s[:])
	h.Write(b)
	return h.Sum64()
}

// appendFloat writes a GLSL float literal, forcing a decimal point so the
// token never parses as an int.
func appendFloat(dst []byte, v float32) []byte {
	start := len(dst)
	dst = strconv.AppendFloat(dst, float64(v), 'g', -1, 32)
	for _, c := range dst[start:] {
		if c == '.' || c == 'e' || c == 'E' {
			return dst
		}
	}
	return append(dst, ".0"...)
}

func appendInt(dst []byte, v int) []byte {
	return strconv.AppendInt(dst, int64(v), 10)
}
