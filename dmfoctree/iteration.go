package dmfoctree

import (
	"sort"

	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// Entry pairs a VoxelIndex with its data, the unit yielded by sorted
// iteration.
type Entry struct {
	Index voxelindex.VoxelIndex
	Data  VoxelData
}

// sortedEntries returns every occupied voxel ordered by the total order in
// §3 (level, then index). Iteration is a snapshot: callers that need to
// observe concurrent inserts should re-call it.
func (o *DmfOctree) sortedEntries() []Entry {
	o.mu.Lock()
	entries := make([]Entry, 0, len(o.voxels))
	for idx, data := range o.voxels {
		entries = append(entries, Entry{Index: idx, Data: *data})
	}
	o.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index.Less(entries[j].Index) })
	return entries
}

// All returns every occupied voxel in sorted (level,index) order.
func (o *DmfOctree) All() []Entry { return o.sortedEntries() }

// AtLevel returns every occupied voxel at exactly the given level, in
// ascending index order, using a lower/upper-bound scan over the sorted
// snapshot (the map itself carries no order, so Level is found by binary
// search rather than a true range query; adequate at these corpus sizes).
func (o *DmfOctree) AtLevel(level uint8) []Entry {
	all := o.sortedEntries()
	lo := sort.Search(len(all), func(i int) bool { return all[i].Index.Level >= level })
	hi := sort.Search(len(all), func(i int) bool { return all[i].Index.Level > level })
	return all[lo:hi]
}
