// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package golomb

import "math"

// B returns the optimal modulus for a geometric distribution with success
// probability p, ⌈-ln(2 - p) / ln(1 - p)⌉.
func B(p float64) (uint64, error) {
	// also rejects NaN
	if !(p > 0 && p < 1) {
		return 0, ErrInvalidParameter
	}

	b := math.Ceil(-math.Log(2-p) / math.Log1p(-p))
	if math.IsInf(b, 0) || math.IsNaN(b) || b >= math.MaxUint64 {
		return 0, ErrInvalidParameter
	}
	if b < 1 {
		return 1, nil
	}
	return uint64(b), nil
}

// P returns 1 / 2^(1/b), the ratio between consecutive probabilities of the
// geometric distribution a Golomb code with modulus b is intended for. A value
// b steps further is half as likely.
//
// P is not the inverse of B: B takes the success probability, which is
// 1 - P(b), see SuccessProbability.
func P(b uint64) (float64, error) {
	if b == 0 {
		return 0, ErrInvalidModulus
	}
	return 1 / math.Pow(2, 1/float64(b)), nil
}

// SuccessProbability returns 1 - P(b), the success probability whose optimal
// modulus is b. B(SuccessProbability(b)) == b for every b >= 1.
func SuccessProbability(b uint64) (float64, error) {
	if b == 0 {
		return 0, ErrInvalidModulus
	}
	return -math.Expm1(-math.Ln2 / float64(b)), nil
}
