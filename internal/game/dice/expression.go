package dice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression such as "2d6+3" or "4d6kh3".
//
// Invariant: Count >= 1, Sides >= 2, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
}

var expressionPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// IsExpression reports whether s parses as a dice expression.
func IsExpression(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses "d20", "2d6", "2d6+3", "4d8-2", or "4d6kh3+1".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := expressionPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: invalid expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.KeepHighest, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		e.Modifier, _ = strconv.Atoi(m[4])
	}
	switch {
	case e.Count < 1:
		return Expression{}, fmt.Errorf("dice: die count in %q must be >= 1", expr)
	case e.Sides < 2:
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", expr)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("dice: kh in %q must be > 0 and < count %d", expr, e.Count)
	}
	return e, nil
}

// RollResult is the audit trail of one evaluated expression.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns sum(Dice) + Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Roll evaluates e against src.
//
// Precondition: e came from Parse; src is non-nil.
// Postcondition: len(Dice) == Count, or KeepHighest when set.
func Roll(e Expression, src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	if e.KeepHighest > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(rolled)))
		rolled = rolled[:e.KeepHighest]
	}
	return RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

// RollExpr parses and rolls expr in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
