package entity

type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

const BoardSize = 9

// Triple is one of the eight index combinations that wins a round.
type Triple [3]int

var WinCombos = [...]Triple{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a row-major 3x3 grid.
type Board [BoardSize]Mark

// Other returns the opposing mark. Empty has no opponent.
func (that Mark) Other() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (that Mark) IsPlayer() bool {
	return that == X || that == O
}

func (that Board) IsEmpty(cell int) bool {
	return that[cell] == Empty
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// WinningTriple reports the first combo whose three cells hold the same mark.
func (that Board) WinningTriple() (Triple, Mark, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != Empty && a == b && b == c {
			return combo, a, true
		}
	}

	return Triple{}, Empty, false
}

// DetermineOutcome evaluates the board without changing it.
func (that Board) DetermineOutcome() RoundOutcome {
	if combo, mark, ok := that.WinningTriple(); ok {
		return RoundOutcome{Status: RoundWon, Winner: mark, Triple: combo}
	}

	// the round continues until all the cells are full
	if that.IsFull() {
		return RoundOutcome{Status: RoundDraw}
	}

	return RoundOutcome{Status: RoundInProgress}
}
