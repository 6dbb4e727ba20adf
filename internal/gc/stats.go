package gc

// Stats tracks collector activity for diagnostics and the
// internal/stats package's minor/major pause counters.
type Stats struct {
	LiveYoung            int
	LiveOld              int
	Promotions           int
	MinorCollections     int
	MajorCollections     int
	RememberedSetEntries int
}
