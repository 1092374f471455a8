// Package service implements the cache-aside pipeline between the local
// record store and the data.gov.in API: handlers ask it for shaped district
// and state data, it decides when the local cache suffices and when to go to
// the remote source.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/nishajha1234/mgnrega-backend/datagov"
	"github.com/nishajha1234/mgnrega-backend/models"
	"github.com/nishajha1234/mgnrega-backend/store"
)

const (
	// districtFetchLimit bounds a state+district scoped remote fetch.
	districtFetchLimit = 10000

	// stateFetchLimit bounds a state+year scoped remote fetch.
	stateFetchLimit = 10000

	// availabilitySampleLimit bounds the unfiltered sample used to derive
	// which states and years the resource covers.
	availabilitySampleLimit = 1000

	// fetchStoreTimeout bounds one shared fetch-and-store pass.
	fetchStoreTimeout = 30 * time.Second

	remoteCacheTTL       = 30 * time.Minute
	remoteCacheCleanup   = time.Hour
	availabilityCacheKey = "availability"
)

// Service owns no persistent state of its own; everything durable lives in
// the store. Safe for concurrent use.
type Service struct {
	store     *store.Store
	client    *datagov.Client
	stateName string

	// fetches collapses concurrent cache misses for the same district into
	// one remote call.
	fetches singleflight.Group

	// remoteCache keeps remote-derived responses (availability sample,
	// per-state year series) for a bounded TTL so repeated dashboard loads
	// do not hammer the upstream API.
	remoteCache *gocache.Cache
}

// New wires the service to an opened store and a remote client. stateName is
// the state every district-scoped fetch is filtered to.
func New(st *store.Store, client *datagov.Client, stateName string) *Service {
	return &Service{
		store:       st,
		client:      client,
		stateName:   stateName,
		remoteCache: gocache.New(remoteCacheTTL, remoteCacheCleanup),
	}
}

// DistrictData runs the cache-aside pipeline for one district: serve from
// the store when it has rows, otherwise fetch from the remote source,
// persist, re-read and project. Stale local data is still a cache hit;
// refresh policy is not this layer's concern.
func (s *Service) DistrictData(ctx context.Context, districtCode string) (*models.DistrictData, error) {
	code := strings.TrimSpace(districtCode)
	if code == "" {
		return nil, fmt.Errorf("%w: district code is required", ErrInvalidInput)
	}

	rows, err := s.store.ReadRecords(ctx, code, store.DefaultRecordLimit)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	if len(rows) == 0 {
		// Concurrent misses for the same district share one fetch; the
		// loser of the race still sees the winner's rows on re-read.
		if _, err, _ := s.fetches.Do(code, func() (interface{}, error) {
			// The flight is shared by every waiter, so it must not die with
			// whichever caller happens to lead it. Detach from the leader's
			// context and bound the pass on its own.
			fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchStoreTimeout)
			defer cancel()
			return nil, s.fetchAndStore(fetchCtx, code)
		}); err != nil {
			return nil, err
		}
		rows, err = s.store.ReadRecords(ctx, code, store.DefaultRecordLimit)
		if err != nil {
			return nil, fmt.Errorf("re-read records: %w", err)
		}
	}

	if len(rows) == 0 {
		return nil, datagov.ErrNoData
	}
	return Project(rows), nil
}

// fetchAndStore pulls the district's records from the remote source and
// persists them in one transaction, plus opportunistic directory entries and
// a last_fetch marker.
func (s *Service) fetchAndStore(ctx context.Context, districtCode string) error {
	log.Printf("Fetching live data for district %s...", districtCode)

	raw, err := s.client.Fetch(ctx, datagov.Filters{
		StateName:    s.stateName,
		DistrictCode: districtCode,
	}, districtFetchLimit)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	records := make([]models.DistrictRecord, 0, len(raw))
	for _, p := range raw {
		rec := models.DistrictRecord{
			FinYear:      p.String("fin_year"),
			Month:        p.String("month"),
			StateCode:    p.String("state_code"),
			StateName:    p.String("state_name"),
			DistrictCode: p.String("district_code"),
			DistrictName: p.String("district_name"),
			Payload:      p,
			CreatedAt:    now,
		}
		if rec.StateName == "" {
			rec.StateName = s.stateName
		}
		if rec.DistrictCode == "" {
			rec.DistrictCode = districtCode
		}
		records = append(records, rec)
	}

	if err := s.store.UpsertRecords(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	seen := map[string]bool{}
	for _, rec := range records {
		if rec.DistrictCode == "" || rec.DistrictName == "" || seen[rec.DistrictCode] {
			continue
		}
		seen[rec.DistrictCode] = true
		if err := s.store.UpsertDistrict(ctx, rec.DistrictCode, rec.DistrictName); err != nil {
			log.Printf("upsert district %s: %v", rec.DistrictCode, err)
		}
	}

	if err := s.store.SetMetadata(ctx, "last_fetch", now.Format(time.RFC3339)); err != nil {
		log.Printf("record last_fetch: %v", err)
	}

	log.Printf("Saved %d records for district %s", len(records), districtCode)
	return nil
}
