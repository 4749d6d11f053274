package bot

import (
	botinternal "github.com/Paulmait/dominauts-sub001/internal/bot/internal"
	"github.com/Paulmait/dominauts-sub001/internal/domain"
)

// Per-variant heuristic weights. All Fives is dominated by immediate
// scoring yield; the Block family leans on retention and end defense.
// Chicken Foot and Mexican Train shed doubles aggressively because an
// uncovered double at round end is pure liability, while Block-style
// hands prefer holding a double until its pip is safe.
var variantTuning = map[domain.Variant]botinternal.Weights{
	domain.VariantBlock: {
		ScoreYield:     0,
		Retention:      1.0,
		DoubleBias:     1.5,
		BlockPotential: 0.6,
	},
	domain.VariantAllFives: {
		ScoreYield:     10.0,
		Retention:      0.5,
		DoubleBias:     -0.5,
		BlockPotential: 0.3,
	},
	domain.VariantCuban: {
		ScoreYield:     0,
		Retention:      1.0,
		DoubleBias:     1.5,
		BlockPotential: 0.8,
	},
	domain.VariantChickenFoot: {
		ScoreYield:     0,
		Retention:      0.8,
		DoubleBias:     2.5,
		BlockPotential: 0.4,
	},
	domain.VariantMexicanTrain: {
		ScoreYield:     0,
		Retention:      0.8,
		DoubleBias:     2.5,
		BlockPotential: 0.4,
	},
}

// TuningFor returns the weights for a variant, falling back to the Block
// profile for anything unmapped.
func TuningFor(v domain.Variant) botinternal.Weights {
	if w, ok := variantTuning[v]; ok {
		return w
	}
	return variantTuning[domain.VariantBlock]
}
