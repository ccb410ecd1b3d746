package params

// Revision names a point in EVM evolution, matching the GLOSSARY's
// "named set of rules" definition. Default is Cancun.
type Revision int

const (
	Frontier Revision = iota
	Homestead
	TangerineWhistle // EIP-150
	SpuriousDragon   // EIP-158
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris // The Merge
	Shanghai
	Cancun
)

// Rules is the flattened set of revision-derived feature flags consulted by
// C2 (gas schedule) and C6 (opcode handlers), mirroring the teacher's own
// params.Rules pattern of pre-computed IsXXX booleans instead of repeated
// revision comparisons at hot call sites.
type Rules struct {
	Revision Revision

	IsHomestead bool
	IsEIP150    bool // TangerineWhistle
	IsEIP158    bool // SpuriousDragon: empty-account pruning
	IsByzantium bool
	IsConstantinople bool
	IsPetersburg     bool
	IsIstanbul       bool
	IsEIP2929        bool // Berlin: access lists / cold-warm accounting
	IsBerlin         bool
	IsLondon         bool // EIP-1559, EIP-3529 refund cap /5
	IsMerge          bool
	IsShanghai       bool
	IsCancun         bool // transient storage, MCOPY, blob hashes
}

// RulesForRevision expands a single Revision into the flattened Rules the
// rest of the tree consults, so callers never need a chain of `rev >= X`
// comparisons outside this one place.
func RulesForRevision(rev Revision) Rules {
	return Rules{
		Revision:         rev,
		IsHomestead:      rev >= Homestead,
		IsEIP150:         rev >= TangerineWhistle,
		IsEIP158:         rev >= SpuriousDragon,
		IsByzantium:      rev >= Byzantium,
		IsConstantinople: rev >= Constantinople,
		IsPetersburg:     rev >= Petersburg,
		IsIstanbul:       rev >= Istanbul,
		IsBerlin:         rev >= Berlin,
		IsEIP2929:        rev >= Berlin,
		IsLondon:         rev >= London,
		IsMerge:          rev >= Paris,
		IsShanghai:       rev >= Shanghai,
		IsCancun:         rev >= Cancun,
	}
}

func (r Revision) String() string {
	switch r {
	case Frontier:
		return "Frontier"
	case Homestead:
		return "Homestead"
	case TangerineWhistle:
		return "TangerineWhistle"
	case SpuriousDragon:
		return "SpuriousDragon"
	case Byzantium:
		return "Byzantium"
	case Constantinople:
		return "Constantinople"
	case Petersburg:
		return "Petersburg"
	case Istanbul:
		return "Istanbul"
	case Berlin:
		return "Berlin"
	case London:
		return "London"
	case Paris:
		return "Paris"
	case Shanghai:
		return "Shanghai"
	case Cancun:
		return "Cancun"
	default:
		return "Unknown"
	}
}
