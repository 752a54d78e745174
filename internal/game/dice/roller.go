package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every draw at debug level so a battle's random
// decisions can be audited after the fact.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller over src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// Intn draws from the underlying source, satisfying Source.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Percent rolls 1..100 and reports whether the roll is within chance.
//
// Postcondition: hit == (roll <= chance); chance <= 0 never hits; chance >= 100 always hits.
func (r *Roller) Percent(reason string, chance int) (roll int, hit bool) {
	roll = r.src.Intn(100) + 1
	hit = roll <= chance
	r.logger.Debug("percent roll",
		zap.String("reason", reason),
		zap.Int("chance", chance),
		zap.Int("roll", roll),
		zap.Bool("hit", hit),
	)
	return roll, hit
}

// RollExpr parses and rolls expr, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	result, err := RollExpr(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}
