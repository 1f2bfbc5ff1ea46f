package evaluation

import (
	"strconv"

	"github.com/rawblock/datasynth-engine/internal/metrics"
)

// AnomalyRateCheck verifies the injected fraud/anomaly rate falls within a
// configured band, ported from synth-eval/src/ml/labels.rs.
func AnomalyRateCheck(anomalousCount, totalCount int, minRate, maxRate float64) CheckResult {
	if totalCount == 0 {
		return CheckResult{Name: "anomaly_rate", Passed: false, Detail: "no rows"}
	}
	rate := float64(anomalousCount) / float64(totalCount)
	return CheckResult{
		Name:   "anomaly_rate",
		Score:  rate,
		Passed: rate >= minRate && rate <= maxRate,
		Detail: "injected anomaly rate within configured band",
	}
}

// LabelCoverageCheck verifies every injected anomaly carries a ground-truth
// label usable for supervised evaluation.
func LabelCoverageCheck(labeled, total int, minFraction float64) CheckResult {
	if total == 0 {
		return CheckResult{Name: "label_coverage", Passed: true, Detail: "no anomalies to label"}
	}
	fraction := float64(labeled) / float64(total)
	return CheckResult{
		Name:   "label_coverage",
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "fraction of anomalies carrying a ground-truth label",
	}
}

// TrainTestSplitCheck verifies the realized split ratio matches the
// configured target within tolerance.
func TrainTestSplitCheck(trainCount, testCount int, targetTrainFraction, tolerance float64) CheckResult {
	total := trainCount + testCount
	if total == 0 {
		return CheckResult{Name: "train_test_split", Passed: false, Detail: "no rows"}
	}
	actual := float64(trainCount) / float64(total)
	diff := actual - targetTrainFraction
	if diff < 0 {
		diff = -diff
	}
	return CheckResult{
		Name:   "train_test_split",
		Score:  actual,
		Passed: diff <= tolerance,
		Detail: "realized train fraction vs target",
	}
}

// TypologyClusteringAgreementCheck scores how well a candidate clustering of
// flagged accounts (e.g. from a downstream unsupervised model) agrees with
// the ground-truth typology labels the banking engine attached during
// injection, using the teacher's internal/metrics ARI/VI partition-agreement
// pair.
func TypologyClusteringAgreementCheck(predictedClusters, groundTruthTypologies []int, minARI float64) CheckResult {
	if len(predictedClusters) == 0 {
		return CheckResult{Name: "typology_clustering_agreement", Passed: true, Detail: "no flagged accounts to cluster"}
	}
	ari := metrics.AdjustedRandIndex(predictedClusters, groundTruthTypologies)
	vi := metrics.VariationOfInformation(predictedClusters, groundTruthTypologies)
	return CheckResult{
		Name:   "typology_clustering_agreement",
		Score:  ari,
		Passed: ari >= minARI,
		Detail: "adjusted Rand index between a candidate clustering and ground-truth typology labels (VI=" + strconv.FormatFloat(vi, 'f', 4, 64) + ")",
	}
}

// unionFind is a small disjoint-set structure used to measure graph
// connectivity over the counterparty/account graph; union-find has no
// natural third-party seam so this stays hand-rolled (see DESIGN.md).
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// GraphConnectivityCheck builds a union-find over nodeCount nodes joined by
// edges and reports the largest connected component's share of all nodes.
func GraphConnectivityCheck(nodeCount int, edges [][2]int, minLargestComponentFraction float64) CheckResult {
	if nodeCount == 0 {
		return CheckResult{Name: "graph_connectivity", Passed: false, Detail: "empty graph"}
	}
	uf := newUnionFind(nodeCount)
	for _, e := range edges {
		uf.union(e[0], e[1])
	}
	counts := make(map[int]int, nodeCount)
	largest := 0
	for i := 0; i < nodeCount; i++ {
		root := uf.find(i)
		counts[root]++
		if counts[root] > largest {
			largest = counts[root]
		}
	}
	fraction := float64(largest) / float64(nodeCount)
	return CheckResult{
		Name:   "graph_connectivity",
		Score:  fraction,
		Passed: fraction >= minLargestComponentFraction,
		Detail: "largest connected component's share of the counterparty/account graph",
	}
}
