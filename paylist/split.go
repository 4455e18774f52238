package paylist

import "math/bits"

// SplitProportional divides total across weights, returning one amount per
// weight. Each amount is total*weight/sum(weights) rounded down; the last
// entry takes the remainder so the amounts always sum to exactly total.
// The per-entry multiply runs through a 128-bit intermediate, so large
// totals and weights do not overflow.
func SplitProportional(total uint64, weights []uint64) ([]uint64, error) {
	if total == 0 {
		return nil, ErrZeroTotal
	}
	if len(weights) == 0 {
		return nil, ErrNoWeights
	}

	var sum uint64
	for _, w := range weights {
		next := sum + w
		if next < sum {
			return nil, ErrWeightOverflow
		}
		sum = next
	}
	if sum == 0 {
		return nil, ErrZeroWeightSum
	}

	amounts := make([]uint64, len(weights))
	var distributed uint64
	for i, w := range weights {
		if i == len(weights)-1 {
			amounts[i] = total - distributed
			break
		}
		hi, lo := bits.Mul64(total, w)
		amount, _ := bits.Div64(hi, lo, sum)
		amounts[i] = amount
		distributed += amount
	}
	return amounts, nil
}
