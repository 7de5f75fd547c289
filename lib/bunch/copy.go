package bunch

/* copy.go contains functions for copying the structure and particles of one
Bunch into another. Attribute blocks are shared between the two Bunches,
since blocks keep no per-bunch state. */

// CopyEmptyBunchTo copies everything except the particles into dst: bunch
// attributes, the reference particle, the process group, growth settings,
// and every attribute block dst doesn't already have.
func (b *Bunch) CopyEmptyBunchTo(dst *Bunch) {
	b.bucket.CopyTo(dst.bucket)
	dst.syncPart = b.syncPart
	dst.comm = b.comm
	dst.growthChunk, dst.minGrowthChunk = b.growthChunk, b.minGrowthChunk

	for _, name := range b.attrOrder {
		if !dst.HasParticleAttributes(name) {
			// Can't fail: the name is new to dst and the width is valid.
			dst.AddParticleAttributes(b.attrs[name].attr)
		}
	}
}

// CopyBunchTo makes dst a copy of b. Whatever dst held before is discarded.
// Dead particles aren't copied.
func (b *Bunch) CopyBunchTo(dst *Bunch) {
	if dst == b {
		return
	}
	dst.DeleteAllParticles()
	dst.RemoveAllParticleAttributes()
	b.CopyEmptyBunchTo(dst)
	b.AddParticlesTo(dst)
}

// AddParticlesTo appends every alive particle of b to dst. Attribute
// columns are copied for every block that both bunches have with the same
// width. Blocks only dst has keep their defaults.
func (b *Bunch) AddParticlesTo(dst *Bunch) {
	shared := []string{}
	for _, name := range b.attrOrder {
		e := b.attrs[name]
		if de, ok := dst.attrs[name]; ok && de.upp-de.low == e.upp-e.low {
			shared = append(shared, name)
		}
	}

	n := b.size
	for i := 0; i < n; i++ {
		if b.store.flag[i] == 0 {
			continue
		}
		j := dst.AddParticleCoord(b.store.coord[i])
		for _, name := range shared {
			copy(dst.AttrRow(name, j), b.AttrRow(name, i))
		}
	}
}
