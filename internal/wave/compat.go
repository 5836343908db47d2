package wave

// Dir is one of the four cardinal directions, fixed per base-spec §3:
// 0=right (dx=+1,dy=0), 1=down (dx=0,dy=+1), 2=left (dx=-1,dy=0), 3=up (dx=0,dy=-1).
type Dir uint8

const (
	Right Dir = 0
	Down  Dir = 1
	Left  Dir = 2
	Up    Dir = 3
)

// NumDirs is the number of cardinal directions the propagator reasons about.
const NumDirs = 4

// Opposite returns the involution opposite[d]: Right<->Left, Down<->Up.
func Opposite(d Dir) Dir { return (d + 2) % NumDirs }

var deltas = [NumDirs][2]int{
	Right: {1, 0},
	Down:  {0, 1},
	Left:  {-1, 0},
	Up:    {0, -1},
}

// Delta returns the (dx, dy) offset for direction d.
func Delta(d Dir) (dx, dy int) {
	delta := deltas[d]
	return delta[0], delta[1]
}

// Compat is the compatibility table C[p][d]: for pattern p and direction d,
// the list of patterns q such that placing p at a cell and q at the
// neighbor in direction d is locally consistent. Required invariant
// (base-spec §3): q ∈ C[p][d] ⇔ p ∈ C[q][opposite(d)].
//
// Stored as a per-(p,d) slice of pattern indices rather than a dense
// matrix, since C is typically sparse (base-spec §9, "Memory layout").
type Compat [][NumDirs][]int

// NewCompat allocates a Compat table over numPatterns patterns with empty
// adjacency lists; callers populate it with Add.
func NewCompat(numPatterns int) Compat {
	return make(Compat, numPatterns)
}

// Add records that q is compatible with p in direction d, and p is
// compatible with q in the opposite direction, maintaining the symmetry
// invariant by construction rather than requiring a separate validation
// pass. Duplicate Add calls for the same (p, d, q) are harmless but will
// duplicate entries; reducers dedupe before calling Add when that matters.
func (c Compat) Add(p int, d Dir, q int) {
	c[p][d] = append(c[p][d], q)
	c[q][Opposite(d)] = append(c[q][Opposite(d)], p)
}

// Neighbors returns C[p][d].
func (c Compat) Neighbors(p int, d Dir) []int { return c[p][d] }

// NumPatterns returns the alphabet size this table was built over.
func (c Compat) NumPatterns() int { return len(c) }
