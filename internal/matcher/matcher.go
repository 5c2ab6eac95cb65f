package matcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Config holds matcher configuration
type Config struct {
	Threshold float64
}

// Cluster is a group of similar names. The first element is the seed.
type Cluster []string

// Seed returns the name the cluster was built around
func (c Cluster) Seed() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Matcher groups names by similarity to a seed
type Matcher struct {
	cfg Config
}

// New creates a new matcher
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Threshold returns the configured similarity threshold
func (m *Matcher) Threshold() float64 {
	return m.cfg.Threshold
}

// Group partitions names using the configured threshold
func (m *Matcher) Group(names []string) []Cluster {
	return GroupBySimilarity(names, m.cfg.Threshold)
}

// GroupIndices partitions names like Group but returns positions into names,
// so equal names stay distinguishable.
func (m *Matcher) GroupIndices(names []string) [][]int {
	return GroupIndices(names, m.cfg.Threshold)
}

// Similarity returns the ratio 2*M/T of matching characters between a and b,
// where M is the number of matched runes and T the total rune count.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra := strings.Split(a, "")
	rb := strings.Split(b, "")

	// The matching-block heuristic is order dependent
	forward := difflib.NewMatcher(ra, rb).Ratio()
	backward := difflib.NewMatcher(rb, ra).Ratio()
	if backward > forward {
		return backward
	}
	return forward
}

// GroupBySimilarity greedily clusters names around seeds. The first remaining
// name becomes the seed and every later name scoring strictly above threshold
// against it joins the cluster. Membership is not transitive.
func GroupBySimilarity(names []string, threshold float64) []Cluster {
	groups := GroupIndices(names, threshold)
	if len(groups) == 0 {
		return nil
	}

	clusters := make([]Cluster, 0, len(groups))
	for _, group := range groups {
		cluster := make(Cluster, 0, len(group))
		for _, idx := range group {
			cluster = append(cluster, names[idx])
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// GroupIndices clusters like GroupBySimilarity but returns positions into names
func GroupIndices(names []string, threshold float64) [][]int {
	remaining := make([]int, len(names))
	for i := range names {
		remaining[i] = i
	}

	var groups [][]int
	for len(remaining) > 0 {
		seed := remaining[0]
		group := []int{seed}
		rest := make([]int, 0, len(remaining)-1)

		for _, idx := range remaining[1:] {
			if Similarity(names[seed], names[idx]) > threshold {
				group = append(group, idx)
			} else {
				rest = append(rest, idx)
			}
		}

		groups = append(groups, group)
		remaining = rest
	}

	return groups
}
