package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// LatencySnapshot summarizes successful calls for one collaborator.
type LatencySnapshot struct {
	Collaborator string  `json:"collaborator"`
	Total        int64   `json:"total"`
	Failed       int64   `json:"failed"`
	P90Ms        float64 `json:"p90_ms"`
	P95Ms        float64 `json:"p95_ms"`
}

// SnapshotCollaborators reads the collaborator latency histogram from gatherer
// and returns one snapshot per collaborator, sorted by name.
func SnapshotCollaborators(gatherer prometheus.Gatherer) []LatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return nil
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == CollaboratorLatencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return nil
	}

	type agg struct {
		ok         uint64
		failed     uint64
		cumByUpper map[float64]uint64
	}
	byName := map[string]*agg{}
	for _, metric := range family.Metric {
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		name := labelValue(metric, "collaborator")
		a, ok := byName[name]
		if !ok {
			a = &agg{cumByUpper: map[float64]uint64{}}
			byName[name] = a
		}
		if labelValue(metric, "status") != "ok" {
			a.failed += h.GetSampleCount()
			continue
		}
		a.ok += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			a.cumByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	out := make([]LatencySnapshot, 0, len(byName))
	for name, a := range byName {
		uppers := make([]float64, 0, len(a.cumByUpper))
		for upper := range a.cumByUpper {
			uppers = append(uppers, upper)
		}
		sort.Float64s(uppers)
		out = append(out, LatencySnapshot{
			Collaborator: name,
			Total:        int64(a.ok + a.failed),
			Failed:       int64(a.failed),
			P90Ms:        histogramQuantile(0.90, a.ok, uppers, a.cumByUpper) * 1000,
			P95Ms:        histogramQuantile(0.95, a.ok, uppers, a.cumByUpper) * 1000,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Collaborator < out[j].Collaborator })
	return out
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// histogramQuantile linearly interpolates inside the bucket holding the rank.
func histogramQuantile(q float64, total uint64, uppers []float64, cumByUpper map[float64]uint64) float64 {
	if total == 0 || len(uppers) == 0 {
		return 0
	}
	rank := q * float64(total)
	var prevUpper float64
	var prevCum uint64
	for _, upper := range uppers {
		cum := cumByUpper[upper]
		if float64(cum) >= rank {
			if math.IsInf(upper, 1) {
				return prevUpper
			}
			inBucket := cum - prevCum
			if inBucket == 0 {
				return upper
			}
			return prevUpper + (upper-prevUpper)*(rank-float64(prevCum))/float64(inBucket)
		}
		prevUpper = upper
		prevCum = cum
	}
	return prevUpper
}
