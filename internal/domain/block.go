package domain

// blockRules is the classic Block game: a two-ended chain, no drawing and
// no in-play scoring. The round winner collects the opponents' remaining
// pips.
type blockRules struct {
	baseRules
}

func (blockRules) Variant() Variant { return VariantBlock }
