package journal

import (
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/masterdata"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// CompanySelector draws companies weighted by transaction volume using a
// cumulative distribution function, ported from
// datasynth-generators/src/company_selector.rs.
type CompanySelector struct {
	companies []masterdata.Company
	cdf       []float64
}

// NewCompanySelector builds the normalized CDF prefix sums over the given
// companies' volume weights. Returns ErrZeroWeight-equivalent
// core.KindDataDependency if every weight is zero.
func NewCompanySelector(companies []masterdata.Company) (*CompanySelector, error) {
	total := 0.0
	for _, c := range companies {
		total += c.VolumeWeight
	}
	if total <= 0 {
		return nil, core.New(core.KindDataDependency, "company selector: total volume weight is zero")
	}

	cdf := make([]float64, len(companies))
	running := 0.0
	for i, c := range companies {
		running += c.VolumeWeight / total
		cdf[i] = running
	}
	// Guard against floating point drift so the final bucket always
	// reaches 1.0 and Select never falls through.
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}
	return &CompanySelector{companies: companies, cdf: cdf}, nil
}

// Select draws u from rng and returns the company whose CDF bucket
// contains it.
func (s *CompanySelector) Select(rng *seed.StreamRand) masterdata.Company {
	u := rng.Float64()
	lo, hi := 0, len(s.cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.cdf[mid] < u {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return s.companies[lo]
}
