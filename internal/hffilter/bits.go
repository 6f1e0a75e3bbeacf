package hffilter

// SelBits is an 8-bit selection tag: one bit per decay hypothesis.
// Stages thread it as a value; each stage returns a new tag and may only
// narrow or extend bits it is responsible for, never clear bits set by a
// stage it does not address.
type SelBits uint8

// Hypothesis bit positions. Two-bit channels use First/Second for the
// two mass orderings (or the two same-charge daughters for Ds/Lc/Xic).
const (
	BitDzero    SelBits = 1 << 0 // positive as pion, negative as kaon
	BitDzeroBar SelBits = 1 << 1 // positive as kaon, negative as pion

	BitDplusKPiPi SelBits = 1 << 0

	BitDsKKPi SelBits = 1 << 0 // first same-charge track paired with the kaon
	BitDsPiKK SelBits = 1 << 1 // second same-charge track paired with the kaon

	BitBaryonPKPi SelBits = 1 << 0 // first same-charge track as proton
	BitBaryonPiKP SelBits = 1 << 1 // second same-charge track as proton
)

// Has reports whether all bits in mask are set.
func (b SelBits) Has(mask SelBits) bool { return b&mask == mask }

// With returns b with the given bits set.
func (b SelBits) With(mask SelBits) SelBits { return b | mask }

// Keep returns b restricted to the given bits.
func (b SelBits) Keep(mask SelBits) SelBits { return b & mask }

// Empty reports whether no bit is set.
func (b SelBits) Empty() bool { return b == 0 }

// OriginBits tags the production origin of a scored candidate.
type OriginBits uint8

// Bit positions follow the origin enumeration (none=0, prompt=1,
// non-prompt=2), so the none slot stays unused.
const (
	BitPrompt    OriginBits = 1 << 1
	BitNonPrompt OriginBits = 1 << 2
)

// Has reports whether all bits in mask are set.
func (b OriginBits) Has(mask OriginBits) bool { return b&mask == mask }

// Empty reports whether no bit is set.
func (b OriginBits) Empty() bool { return b == 0 }
