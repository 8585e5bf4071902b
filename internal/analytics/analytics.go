// Package analytics implements the analytics engine (C7): pure,
// deterministic functions over a flattened option chain. Grounded exactly on
// calculate_pcr, find_high_oi_strikes, and calculate_max_pain
// (app/data_gather_stocks.py).
package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

// numeric extracts a float64 from a raw CE/PE field value, which may have
// arrived from upstream JSON as a number, a comma-formatted string, or be
// entirely absent.
func numeric(m map[string]interface{}, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PCR computes pcr_by_oi and pcr_by_volume. Missing columns are treated as
// all zeros; zero denominators produce the sentinel 0.0, never NaN or
// infinity (spec.md §4.7, testable property #4).
func PCR(chain models.OptionChainFlat) (byOI, byVolume float64) {
	var peOI, ceOI, peVol, ceVol float64
	for _, row := range chain {
		if v, ok := numeric(row.PE, "openInterest"); ok {
			peOI += v
		}
		if v, ok := numeric(row.CE, "openInterest"); ok {
			ceOI += v
		}
		if v, ok := numeric(row.PE, "totalTradedVolume"); ok {
			peVol += v
		}
		if v, ok := numeric(row.CE, "totalTradedVolume"); ok {
			ceVol += v
		}
	}
	if ceOI > 0 {
		byOI = round2(peOI / ceOI)
	}
	if ceVol > 0 {
		byVolume = round2(peVol / ceVol)
	}
	return byOI, byVolume
}

// TopOI returns the top_n rows by CE_openInterest (resistance) and by
// PE_openInterest (support), each descending with ties broken toward the
// lower strike. Missing columns yield empty lists; top_n larger than the row
// count returns all rows (spec.md §8 boundary behavior).
func TopOI(chain models.OptionChainFlat, topN int) (resistance, support []models.OIStrike) {
	rankBy := func(side func(models.FlatRow) (float64, bool)) []models.OIStrike {
		type entry struct {
			strike int64
			oi     float64
		}
		entries := make([]entry, 0, len(chain))
		for _, row := range chain {
			oi, ok := side(row)
			if !ok {
				continue
			}
			entries = append(entries, entry{strike: row.StrikePrice.IntPart(), oi: oi})
		}
		if len(entries) == 0 {
			return nil
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].oi != entries[j].oi {
				return entries[i].oi > entries[j].oi
			}
			return entries[i].strike < entries[j].strike
		})
		if topN > 0 && topN < len(entries) {
			entries = entries[:topN]
		}
		out := make([]models.OIStrike, len(entries))
		for i, e := range entries {
			out[i] = models.OIStrike{StrikePrice: e.strike, OpenInterest: int64(e.oi)}
		}
		return out
	}

	resistance = rankBy(func(r models.FlatRow) (float64, bool) { return numeric(r.CE, "openInterest") })
	support = rankBy(func(r models.FlatRow) (float64, bool) { return numeric(r.PE, "openInterest") })
	return resistance, support
}

// MaxPain computes the strike minimizing aggregate intrinsic value owed to
// option holders at expiry, per spec.md §4.7's loss function. Ties are
// broken toward the lowest strike; empty input yields a nil strike and zero
// loss.
func MaxPain(chain models.OptionChainFlat) (strike *int64, loss int64) {
	if len(chain) == 0 {
		return nil, 0
	}

	type point struct {
		strike float64
		ceOI   float64
		peOI   float64
	}
	uniqueStrikes := map[float64]bool{}
	points := make([]point, 0, len(chain))
	for _, row := range chain {
		k, _ := row.StrikePrice.Float64()
		if uniqueStrikes[k] {
			continue
		}
		uniqueStrikes[k] = true
		ceOI, _ := numeric(row.CE, "openInterest")
		peOI, _ := numeric(row.PE, "openInterest")
		points = append(points, point{strike: k, ceOI: ceOI, peOI: peOI})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].strike < points[j].strike })

	bestStrike := points[0].strike
	bestLoss := math.Inf(1)
	for _, candidate := range points {
		var l float64
		for _, p := range points {
			if p.strike > candidate.strike {
				l += (p.strike - candidate.strike) * p.ceOI
			} else if p.strike < candidate.strike {
				l += (candidate.strike - p.strike) * p.peOI
			}
		}
		if l < bestLoss {
			bestLoss = l
			bestStrike = candidate.strike
		}
	}

	s := int64(bestStrike)
	return &s, int64(bestLoss)
}

// Compute produces the full AnalyticsResult for a flattened chain.
func Compute(chain models.OptionChainFlat, topN int) models.AnalyticsResult {
	pcrOI, pcrVol := PCR(chain)
	resistance, support := TopOI(chain, topN)
	strike, loss := MaxPain(chain)
	return models.AnalyticsResult{
		PCRByOI:           pcrOI,
		PCRByVolume:       pcrVol,
		ResistanceStrikes: resistance,
		SupportStrikes:    support,
		MaxPainStrike:     strike,
		MaxLossValue:      loss,
	}
}
