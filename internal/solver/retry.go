package solver

// Builder constructs a fresh Wave/Propagator/Driver for one solve attempt
// at the given seed. Reducers implement this over an already-compiled
// problem (overlapping or tiled), reusing its alphabet and compatibility
// tables across attempts and rebuilding only the wave and propagator,
// since those are single-use (SPEC_FULL §5: "the wave is... discarded on
// contradiction").
type Builder[Output any] interface {
	Build(seed uint64) (*Driver[Output], error)
}

// RunWithRetries is the bounded-retry policy described in base-spec §5/§7
// ("an outer driver may bound retries... and abandon") and concretely
// named in SPEC_FULL §C.2/§C.4, after original_source/main.cpp's
// read_overlapping_instance loop ("for test := 0; test < 10; test++").
// It tries up to attempts seeds (supplied in order by seeds, which the
// CLI backs with a cryptographically-irrelevant counter-seeded RNG, per
// base-spec §6's "RNG seed source: any 32-bit integer"), returning the
// first success together with the number of attempts it took.
func RunWithRetries[Output any](b Builder[Output], attempts int, seeds []uint64) (out Output, used int, err error) {
	for i := 0; i < attempts && i < len(seeds); i++ {
		used = i + 1
		d, buildErr := b.Build(seeds[i])
		if buildErr != nil {
			return out, used, buildErr
		}
		out, err = d.Run()
		if err == nil {
			return out, used, nil
		}
	}
	return out, used, err
}
