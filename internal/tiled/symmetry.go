package tiled

import "fmt"

// Class is a tile's symmetry class (base-spec §4.6).
type Class int

const (
	ClassX Class = iota
	ClassI
	ClassBackslash
	ClassT
	ClassL
	ClassP
)

// NumOrientations returns the number of distinct orientations for class c,
// per the table in base-spec §4.6. collapse8[c] always has 8 entries (one
// per raw dihedral transform); the orientation count is the number of
// distinct values it takes, not the length of the backing array.
func (c Class) NumOrientations() int {
	max := 0
	for _, v := range collapse8[c] {
		if v > max {
			max = v
		}
	}
	return max + 1
}

var errInvalidClass = fmt.Errorf("tiled: invalid symmetry class")

// ParseClass maps the spec's class names (X, T, I, L, \, P) to a Class.
func ParseClass(name string) (Class, error) {
	switch name {
	case "X", "":
		return ClassX, nil
	case "I":
		return ClassI, nil
	case "\\":
		return ClassBackslash, nil
	case "T":
		return ClassT, nil
	case "L":
		return ClassL, nil
	case "P":
		return ClassP, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidClass, name)
	}
}

// collapse8[c][j] maps one of the 8 canonical dihedral transforms (in the
// enumeration order of grid.Dihedral: identity, rot90, rot180, rot270,
// reflect, reflect+rot90, reflect+rot180, reflect+rot270) to c's reduced
// orientation index. Derived from each class's stabilizer subgroup of the
// dihedral group D4: a class with k
// orientations has a stabilizer of order 8/k, and collapse8 partitions
// the 8 transforms into k cosets of that stabilizer.
var collapse8 = map[Class][8]int{
	ClassX:         {0, 0, 0, 0, 0, 0, 0, 0},
	ClassI:         {0, 1, 0, 1, 0, 1, 0, 1},
	ClassBackslash: {0, 1, 0, 1, 1, 0, 1, 0},
	ClassT:         {0, 1, 2, 3, 0, 1, 2, 3},
	ClassL:         {0, 1, 2, 3, 3, 0, 1, 2},
	ClassP:         {0, 1, 2, 3, 4, 5, 6, 7},
}

// rot8 and reflect8 are the rotate/reflect permutations of the 8 raw
// dihedral transform indices themselves (independent of any symmetry
// class), derived from the dihedral group relation F∘R^k = R^(-k)∘F:
//
//   - grid.Dihedral's first 4 entries are R^0..R^3 (pure rotations);
//     rotating one more step cycles within that block: rot8(j)=(j+1)%4.
//   - its last 4 entries are R^0∘F..R^3∘F; rotating cycles the same way:
//     rot8(j) = 4+((j-4+1)%4) for j in [4,8).
//   - reflecting a pure rotation R^k gives F∘R^k = R^(4-k)%4 ∘ F, i.e.
//     reflect8(j) = 4+((4-j)%4) for j in [0,4).
//   - reflecting an already-reflected R^k∘F gives F∘R^k∘F = R^(-k)∘F∘F =
//     R^(4-k)%4, i.e. reflect8(j) = (4-(j-4))%4 for j in [4,8).
func rot8(j int) int {
	if j < 4 {
		return (j + 1) % 4
	}
	return 4 + ((j-4+1)%4)
}

func reflect8(j int) int {
	if j < 4 {
		return 4 + ((4 - j) % 4)
	}
	return (4 - (j - 4)) % 4
}

// repIndex returns, for class c and reduced orientation o, the smallest
// raw dihedral index j with collapse8[c][j] == o — i.e. one concrete
// dihedral transform that realizes orientation o, used to pick which of
// grid.Dihedral's 8 variants is orientation o's image when the tile
// supplies a single base image (base-spec §4.6 option (b)).
func repIndex(c Class, o int) int {
	table := collapse8[c]
	for j, v := range table {
		if v == o {
			return j
		}
	}
	panic("tiled: orientation out of range for class")
}

// RotateOrientation returns the orientation reached by rotating a tile
// of class c, currently at orientation o, by 90°.
func RotateOrientation(c Class, o int) int {
	return collapse8[c][rot8(repIndex(c, o))]
}

// ReflectOrientation returns the orientation reached by reflecting a
// tile of class c, currently at orientation o, about the vertical axis.
func ReflectOrientation(c Class, o int) int {
	return collapse8[c][reflect8(repIndex(c, o))]
}
