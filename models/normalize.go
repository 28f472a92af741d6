// ABOUTME: Derived connection fields for inbound create and update payloads
// ABOUTME: Keeps connected and connectionDegree consistent before anything reaches the store
package models

// NormalizePatch applies the connection rules in order:
//  1. degree 1 implies connected
//  2. connected implies degree 1
//  3. not connected and no degree given implies degree 0
//
// Only an absent degree is defaulted by rule 3; an explicit degree is kept.
// All other fields pass through untouched.
func NormalizePatch(p PersonPatch) PersonPatch {
	out := p

	if d, ok := out.ConnectionDegree.Get(); ok && d == 1 {
		out.Connected = Bool(true)
	}

	if out.Connected != nil && *out.Connected {
		out.ConnectionDegree = DegreeOf(1)
	}

	connected := out.Connected != nil && *out.Connected
	if !connected && !out.ConnectionDegree.IsSet() {
		out.ConnectionDegree = DegreeOf(0)
	}

	return out
}
