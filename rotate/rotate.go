package rotate

import "sort"

// Rotate groups items by keyFunc, sorts each group ascending by less, and
// returns, per group:
//   - if n >= 0: the first len(group)-N items (the ones eligible for
//     deletion; the newest N are kept out of the result)
//   - if n < 0: the last N items (the newest N)
//
// where N = min(len(group), abs(n)). n == 0 returns every item. Group
// order in the result, and item order within a kept slice of one group
// relative to others, follows first-encountered-key order; the policy
// itself makes no promise about overall ordering.
func Rotate[T any](n int, items []T, keyFunc func(T) string, less func(a, b T) bool) []T {
	groups := make(map[string][]T)
	var order []string
	for _, item := range items {
		key := keyFunc(item)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	absN := n
	if absN < 0 {
		absN = -absN
	}

	var result []T
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return less(group[i], group[j]) })

		N := absN
		if N > len(group) {
			N = len(group)
		}
		if n >= 0 {
			result = append(result, group[:len(group)-N]...)
		} else {
			result = append(result, group[len(group)-N:]...)
		}
	}
	return result
}
