package bunch

// SyncPart is the reference (synchronous) particle of a bunch. The Bunch
// never looks inside it; it's carried along so that copies and dumps keep
// the reference state together with the particles.
type SyncPart struct {
	Mass, Energy, Time float64
	Position, Momentum [3]float64
}

// SyncPart returns the reference particle.
func (b *Bunch) SyncPart() SyncPart { return b.syncPart }

// SetSyncPart replaces the reference particle.
func (b *Bunch) SetSyncPart(s SyncPart) { b.syncPart = s }
