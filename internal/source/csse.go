package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meenubura/covidtrends/internal/config"
	"github.com/meenubura/covidtrends/internal/httpclient"
)

// Table identifies one of the two CSSE global time-series tables
type Table string

const (
	TableConfirmed Table = "confirmed"
	TableDeaths    Table = "deaths"
)

// Fetch describes where one table's bytes came from
type Fetch struct {
	Table     Table
	Data      []byte
	FromCache bool
	FetchedAt time.Time
}

// Provider downloads the CSSE global time-series CSVs, with an on-disk
// cache in front of the network
type Provider struct {
	confirmedURL string
	deathsURL    string
	client       *httpclient.ClientPool
	cache        *Cache
}

// NewProvider builds a provider from the sources and cache configuration
func NewProvider(sources config.SourcesConfig, cache config.CacheConfig) *Provider {
	clientConfig := httpclient.ClientConfig{
		MaxConcurrency: 2,
		RequestTimeout: sources.RequestTimeout(),
		JitterRange:    [2]int{50, 150},
		UserAgent:      sources.UserAgent,
	}

	return &Provider{
		confirmedURL: sources.ConfirmedURL,
		deathsURL:    sources.DeathsURL,
		client:       httpclient.NewClientPool(clientConfig),
		cache:        NewCache(cache.Dir, cache.TTL()),
	}
}

// FetchConfirmed downloads the confirmed-cases table, bypassing the cache
func (p *Provider) FetchConfirmed(ctx context.Context) ([]byte, error) {
	return p.fetch(ctx, p.confirmedURL, TableConfirmed)
}

// FetchDeaths downloads the deaths table, bypassing the cache
func (p *Provider) FetchDeaths(ctx context.Context) ([]byte, error) {
	return p.fetch(ctx, p.deathsURL, TableDeaths)
}

// FetchAll returns both tables, serving each from the cache when fresh.
// force ignores cache freshness; offline never touches the network.
func (p *Provider) FetchAll(ctx context.Context, force, offline bool) (confirmed, deaths *Fetch, err error) {
	confirmed, err = p.fetchTable(ctx, TableConfirmed, p.confirmedURL, force, offline)
	if err != nil {
		return nil, nil, err
	}

	deaths, err = p.fetchTable(ctx, TableDeaths, p.deathsURL, force, offline)
	if err != nil {
		return nil, nil, err
	}

	return confirmed, deaths, nil
}

func (p *Provider) fetchTable(ctx context.Context, table Table, url string, force, offline bool) (*Fetch, error) {
	if !force {
		data, fresh, err := p.cache.Read(string(table))
		if err != nil {
			log.Warn().Err(err).Str("table", string(table)).Msg("Cache read failed, falling back to network")
		} else if data != nil && (fresh || offline) {
			log.Debug().
				Str("table", string(table)).
				Int("bytes", len(data)).
				Bool("fresh", fresh).
				Msg("Serving CSSE table from cache")
			return &Fetch{Table: table, Data: data, FromCache: true, FetchedAt: time.Now()}, nil
		}
	}

	if offline {
		return nil, fmt.Errorf("offline mode and no cached %s table", table)
	}

	data, err := p.fetch(ctx, url, table)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Write(string(table), data); err != nil {
		log.Warn().Err(err).Str("table", string(table)).Msg("Cache write failed")
	}

	return &Fetch{Table: table, Data: data, FetchedAt: time.Now()}, nil
}

func (p *Provider) fetch(ctx context.Context, url string, table Table) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	resp, err := p.client.Do(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("CSSE fetch failed")
		return nil, fmt.Errorf("failed to fetch %s table: %w", table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table body: %w", table, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("empty response for %s table", table)
	}

	log.Debug().
		Str("table", string(table)).
		Int("bytes", len(data)).
		Dur("duration", duration).
		Msg("CSSE table retrieved")

	return data, nil
}

// Stats exposes the underlying HTTP client statistics
func (p *Provider) Stats() httpclient.ClientStats {
	return p.client.GetStats()
}

// CacheAge reports how old the cached copy of a table is, or false when
// the table was never cached
func (p *Provider) CacheAge(table Table) (time.Duration, bool) {
	return p.cache.Age(string(table))
}
