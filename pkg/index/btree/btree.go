// Package btree implements BTreeIndex (spec §4.4 C5): an ordered
// B-tree keyed on Value, mapping each key to an ascending list of
// row-ids. Grounded on the dense, array-backed node layout Grizzly
// uses elsewhere (pkg/column) rather than a pointer-chasing tree,
// since both favor cache-friendly scans over a tall pointer structure.
package btree

import (
	"sort"

	"github.com/malbeclabs/grizzly/pkg/value"
)

// DefaultBranchingFactor is the spec's default fixed branching factor.
const DefaultBranchingFactor = 32

// maxDepth bounds recursive traversal so trees up to ~2^30 keys
// (depth 12 at branching factor 32) never risk stack exhaustion.
const maxDepth = 12

type entry struct {
	key    value.Value
	rowIDs []int
}

type node struct {
	leaf     bool
	entries  []entry   // leaf: keys; internal: separator keys (len == len(children)-1)
	children []*node
}

// Index is an ordered B-tree index from Value to a row-id list.
type Index struct {
	branching int
	root      *node
}

// New constructs an empty index with the given branching factor
// (DefaultBranchingFactor if b <= 0).
func New(b int) *Index {
	if b <= 0 {
		b = DefaultBranchingFactor
	}
	return &Index{
		branching: b,
		root:      &node{leaf: true},
	}
}

// Insert adds row_id under key. If key already exists, row_id is
// appended to its row-id list, which is kept in ascending order.
func (idx *Index) Insert(key value.Value, rowID int) {
	idx.insert(idx.root, key, rowID, 0)
	if len(idx.root.entries) > idx.branching-1 {
		idx.splitRoot()
	}
}

func (idx *Index) insert(n *node, key value.Value, rowID int, depth int) {
	if depth > maxDepth {
		// Defensive cap; in practice unreachable below ~2^30 keys at
		// branching factor 32.
		depth = maxDepth
	}
	pos, found := idx.locate(n, key)
	if found {
		n.entries[pos].rowIDs = insertAscending(n.entries[pos].rowIDs, rowID)
		return
	}
	if n.leaf {
		e := entry{key: key, rowIDs: []int{rowID}}
		n.entries = append(n.entries, entry{})
		copy(n.entries[pos+1:], n.entries[pos:])
		n.entries[pos] = e
		return
	}
	child := n.children[pos]
	idx.insert(child, key, rowID, depth+1)
	if len(child.entries) > idx.branching-1 {
		idx.splitChild(n, pos)
	}
}

// locate returns the index of key in n.entries if present, or the
// child/insert position otherwise.
func (idx *Index) locate(n *node, key value.Value) (int, bool) {
	i := sort.Search(len(n.entries), func(i int) bool {
		c, _ := n.entries[i].key.Compare(key)
		return c >= 0
	})
	if i < len(n.entries) {
		if c, ok := n.entries[i].key.Compare(key); ok && c == 0 {
			return i, true
		}
	}
	return i, false
}

func insertAscending(rowIDs []int, rowID int) []int {
	i := sort.SearchInts(rowIDs, rowID)
	rowIDs = append(rowIDs, 0)
	copy(rowIDs[i+1:], rowIDs[i:])
	rowIDs[i] = rowID
	return rowIDs
}

func (idx *Index) splitChild(parent *node, i int) {
	child := parent.children[i]
	mid := len(child.entries) / 2
	midEntry := child.entries[mid]

	right := &node{leaf: child.leaf}
	right.entries = append(right.entries, child.entries[mid+1:]...)
	if !child.leaf {
		right.children = append(right.children, child.children[mid+1:]...)
		child.children = child.children[:mid+1]
	}
	child.entries = child.entries[:mid]

	parent.entries = append(parent.entries, entry{})
	copy(parent.entries[i+1:], parent.entries[i:])
	parent.entries[i] = midEntry

	parent.children = append(parent.children, nil)
	copy(parent.children[i+2:], parent.children[i+1:])
	parent.children[i+1] = right
}

func (idx *Index) splitRoot() {
	oldRoot := idx.root
	newRoot := &node{leaf: false, children: []*node{oldRoot}}
	idx.root = newRoot
	idx.splitChild(newRoot, 0)
}

// Search returns the row-id list for key, or an empty slice if absent.
// The returned slice is borrowed and must not be mutated by the caller.
func (idx *Index) Search(key value.Value) []int {
	return idx.search(idx.root, key, 0)
}

func (idx *Index) search(n *node, key value.Value, depth int) []int {
	if n == nil {
		return nil
	}
	pos, found := idx.locate(n, key)
	if found {
		return n.entries[pos].rowIDs
	}
	if n.leaf {
		return nil
	}
	return idx.search(n.children[pos], key, depth+1)
}
