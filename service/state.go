package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nishajha1234/mgnrega-backend/datagov"
	"github.com/nishajha1234/mgnrega-backend/models"
	"github.com/nishajha1234/mgnrega-backend/utils"
)

// Districts returns the cached district directory ordered by name.
func (s *Service) Districts(ctx context.Context) ([]models.District, error) {
	return s.store.ListDistricts(ctx)
}

// Metadata returns all stored metadata rows.
func (s *Service) Metadata(ctx context.Context) ([]models.MetadataEntry, error) {
	return s.store.ReadMetadata(ctx)
}

// StateComparison aggregates households worked per financial year across all
// locally cached records.
func (s *Service) StateComparison(ctx context.Context) ([]models.YearTotal, error) {
	return s.store.HouseholdsByYear(ctx)
}

// StateSeries fetches per-month expenditure and persondays for each requested
// financial year, live from the remote source. Years with no data are
// skipped; the result errors with ErrNoData only when every year came back
// empty. Results are TTL-cached per (state, years).
func (s *Service) StateSeries(ctx context.Context, stateName string, years []string) (map[string][]models.StatePoint, error) {
	state := strings.TrimSpace(stateName)
	if state == "" {
		return nil, fmt.Errorf("%w: state name is required", ErrInvalidInput)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: at least one financial year is required", ErrInvalidInput)
	}

	key := "state:" + strings.ToUpper(state) + ":" + strings.Join(years, ",")
	if cached, ok := s.remoteCache.Get(key); ok {
		return cached.(map[string][]models.StatePoint), nil
	}

	result := map[string][]models.StatePoint{}
	for _, year := range years {
		raw, err := s.client.Fetch(ctx, datagov.Filters{
			StateName: state,
			FinYear:   year,
		}, stateFetchLimit)
		if errors.Is(err, datagov.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}

		points := make([]models.StatePoint, 0, len(raw))
		for _, p := range raw {
			month := p.String("month")
			if month == "" {
				month = "Unknown"
			}
			points = append(points, models.StatePoint{
				Month:       month,
				Expenditure: utils.ToNumber(p["Total_Exp"]),
				Persondays: utils.ToNumber(p["SC_persondays"]) +
					utils.ToNumber(p["ST_persondays"]) +
					utils.ToNumber(p["Women_Persondays"]) +
					utils.ToNumber(p["Persondays_of_Central_Liability_so_far"]),
			})
		}
		result[year] = points
	}

	if len(result) == 0 {
		return nil, datagov.ErrNoData
	}
	s.remoteCache.Set(key, result, gocache.DefaultExpiration)
	return result, nil
}

// Availability derives which states and financial years the upstream
// resource covers from a bounded unfiltered sample. States sort ascending,
// years descending. The sample is TTL-cached.
func (s *Service) Availability(ctx context.Context) (*models.Availability, error) {
	if cached, ok := s.remoteCache.Get(availabilityCacheKey); ok {
		return cached.(*models.Availability), nil
	}

	raw, err := s.client.Fetch(ctx, datagov.Filters{}, availabilitySampleLimit)
	if err != nil && !errors.Is(err, datagov.ErrNoData) {
		return nil, err
	}

	stateSet := map[string]bool{}
	yearSet := map[string]bool{}
	for _, p := range raw {
		if v := p.String("state_name"); v != "" {
			stateSet[v] = true
		}
		if v := p.String("fin_year"); v != "" {
			yearSet[v] = true
		}
	}

	av := &models.Availability{States: []string{}, Years: []string{}}
	for v := range stateSet {
		av.States = append(av.States, v)
	}
	for v := range yearSet {
		av.Years = append(av.Years, v)
	}
	sort.Strings(av.States)
	sort.Sort(sort.Reverse(sort.StringSlice(av.Years)))

	s.remoteCache.Set(availabilityCacheKey, av, gocache.DefaultExpiration)
	return av, nil
}
