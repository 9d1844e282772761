package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katchinsky/reflux-tg-bot/models"
)

// MaxCategoryDepth caps the leaf-to-root chain length.
const MaxCategoryDepth = 8

type catNode struct {
	name   string
	parent *uint
}

// CategoryIndex is an arena of category nodes keyed by id. Nodes store
// only a parent reference; roll-up is an upward walk bounded by
// MaxCategoryDepth, so cyclic structures are rejected at build time and
// can never be traversed.
type CategoryIndex struct {
	nodes map[uint]catNode
}

// BuildCategoryIndex validates the stored tree: every parent must
// exist, and every node must reach a root within MaxCategoryDepth hops.
func BuildCategoryIndex(cats []models.Category) (*CategoryIndex, error) {
	ix := &CategoryIndex{nodes: make(map[uint]catNode, len(cats))}
	for _, c := range cats {
		ix.nodes[c.ID] = catNode{name: c.Name, parent: c.ParentID}
	}
	for _, c := range cats {
		if c.ParentID != nil {
			if _, ok := ix.nodes[*c.ParentID]; !ok {
				return nil, fmt.Errorf("%w: category %d references missing parent %d", ErrUpstreamLoad, c.ID, *c.ParentID)
			}
		}
		if ix.depth(c.ID) < 0 {
			return nil, fmt.Errorf("%w: category %d is cyclic or deeper than %d levels", ErrUpstreamLoad, c.ID, MaxCategoryDepth)
		}
	}
	return ix, nil
}

// depth returns hops from the root (root = 0), or -1 when the walk does
// not terminate within the depth cap.
func (ix *CategoryIndex) depth(id uint) int {
	d := 0
	cur := id
	for hop := 0; hop <= MaxCategoryDepth; hop++ {
		n, ok := ix.nodes[cur]
		if !ok || n.parent == nil {
			return d
		}
		cur = *n.parent
		d++
	}
	return -1
}

func (ix *CategoryIndex) Depth(id uint) int { return ix.depth(id) }

func (ix *CategoryIndex) Name(id uint) string { return ix.nodes[id].name }

func (ix *CategoryIndex) Has(id uint) bool {
	_, ok := ix.nodes[id]
	return ok
}

// Parents returns the ancestor chain, nearest ancestor first.
func (ix *CategoryIndex) Parents(id uint) []uint {
	var out []uint
	cur := id
	for hop := 0; hop < MaxCategoryDepth; hop++ {
		n, ok := ix.nodes[cur]
		if !ok || n.parent == nil {
			break
		}
		out = append(out, *n.parent)
		cur = *n.parent
	}
	return out
}

// RollupLevel selects which node gets credit for a meal's leaf
// category: the leaf itself ("lowest") or the ancestor at a fixed
// depth from the root.
type RollupLevel struct {
	Lowest bool
	Depth  int
}

func ParseRollupLevel(s string) (RollupLevel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "lowest" {
		return RollupLevel{Lowest: true}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return RollupLevel{}, fmt.Errorf("%w: category_level must be 'lowest' or a non-negative depth", ErrInvalidConfiguration)
	}
	return RollupLevel{Depth: n}, nil
}

// RollupAt maps a leaf to the node credited at the requested level.
// Chains shorter than the requested depth roll up to the leaf itself;
// roll-up never fails. Sibling leaves under the same ancestor always
// map to the same node.
func (ix *CategoryIndex) RollupAt(leaf uint, level RollupLevel) uint {
	if level.Lowest {
		return leaf
	}
	d := ix.depth(leaf)
	cur := leaf
	for d > level.Depth {
		n, ok := ix.nodes[cur]
		if !ok || n.parent == nil {
			break
		}
		cur = *n.parent
		d--
	}
	return cur
}
