package render

import "sort"

// similarityCutoff is the minimum 1 - distance/maxlen for a suggestion.
const similarityCutoff = 0.6

// Suggestion pairs an unknown key with the closest known one.
type Suggestion struct {
	Key   string
	Match string
}

// Suggest returns the known key closest to key by edit distance, if any
// is similar enough. Exact matches return false: nothing to suggest.
func Suggest(key string, known []string) (string, bool) {
	best, bestScore := "", -1.0
	for _, k := range known {
		if k == key {
			return "", false
		}
		d := levenshtein(key, k)
		maxLen := len([]rune(key))
		if l := len([]rune(k)); l > maxLen {
			maxLen = l
		}
		score := 1 - float64(d)/float64(maxLen)
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore < similarityCutoff {
		return "", false
	}
	return best, true
}

// Check reports every given key that is not known but resembles one that
// is. Keys resembling nothing are left alone: they may be backend options.
func Check(given, known []string) []Suggestion {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	var out []Suggestion
	for _, g := range given {
		if _, ok := set[g]; ok {
			continue
		}
		if m, ok := Suggest(g, known); ok {
			out = append(out, Suggestion{Key: g, Match: m})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
