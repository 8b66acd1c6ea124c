package provider

import (
	"context"
	"sort"
	"strings"

	"crypto-query-lab/internal/domain"
)

const (
	defiLlamaBaseURL       = "https://api.llama.fi"
	defiLlamaYieldsBaseURL = "https://yields.llama.fi"
)

// DefiLlamaProtocols lists DeFi protocols by total value locked.
type DefiLlamaProtocols struct {
	http *HTTPClient
}

// NewDefiLlamaProtocols creates the TVL provider.
func NewDefiLlamaProtocols(opts Options) *DefiLlamaProtocols {
	return &DefiLlamaProtocols{http: opts.newClient("defillama", defiLlamaBaseURL)}
}

func (p *DefiLlamaProtocols) Name() string { return "defillama" }

type llamaProtocol struct {
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Symbol    string            `json:"symbol"`
	Category  string            `json:"category"`
	Chains    []string          `json:"chains"`
	TVL       number            `json:"tvl"`
	Change1D  number            `json:"change_1d"`
	URL       string            `json:"url"`
	ChainTVLs map[string]number `json:"chainTvls"`
}

// Fetch implements Provider. With a chain filter the chain's own TVL is
// reported instead of the protocol total.
func (p *DefiLlamaProtocols) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	var protocols []llamaProtocol
	if err := p.http.GetJSON(ctx, "/protocols", nil, &protocols); err != nil {
		return nil, err
	}

	records := make([]*domain.ProtocolRecord, 0, len(protocols))
	for _, proto := range protocols {
		tvl := proto.TVL.Float()
		if criteria.Chain != "" {
			if v, ok := chainTVL(proto.ChainTVLs, criteria.Chain); ok {
				tvl = v
			}
		}
		symbol := proto.Symbol
		if symbol == "-" {
			symbol = ""
		}
		records = append(records, &domain.ProtocolRecord{
			Name:     strings.TrimSpace(proto.Name),
			Slug:     proto.Slug,
			Symbol:   symbol,
			Category: proto.Category,
			Chains:   proto.Chains,
			TVLUSD:   tvl,
			Change1D: proto.Change1D.Float(),
			URL:      proto.URL,
		})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].TVLUSD > records[j].TVLUSD })

	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = r
	}
	return nonEmpty(p.Name(), out)
}

func chainTVL(tvls map[string]number, chain string) (float64, bool) {
	for name, v := range tvls {
		if strings.EqualFold(name, chain) {
			return v.Float(), true
		}
	}
	return 0, false
}

// DefiLlamaYields lists yield pools.
type DefiLlamaYields struct {
	http *HTTPClient
}

// NewDefiLlamaYields creates the yield provider.
func NewDefiLlamaYields(opts Options) *DefiLlamaYields {
	return &DefiLlamaYields{http: opts.newClient("defillama-yields", defiLlamaYieldsBaseURL)}
}

func (p *DefiLlamaYields) Name() string { return "defillama-yields" }

type llamaPoolsResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Pool    string `json:"pool"`
		Chain   string `json:"chain"`
		Project string `json:"project"`
		Symbol  string `json:"symbol"`
		TVLUSD  number `json:"tvlUsd"`
		APY     number `json:"apy"`
	} `json:"data"`
}

// Fetch implements Provider. Pools are ordered by TVL so the largest,
// most credible pools lead.
func (p *DefiLlamaYields) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	var resp llamaPoolsResponse
	if err := p.http.GetJSON(ctx, "/pools", nil, &resp); err != nil {
		return nil, err
	}

	symbols := upperSet(criteria.Symbols)
	pools := make([]*domain.YieldPoolRecord, 0, len(resp.Data))
	for _, d := range resp.Data {
		if len(symbols) > 0 && !poolHasSymbol(d.Symbol, symbols) {
			continue
		}
		pools = append(pools, &domain.YieldPoolRecord{
			PoolID:  d.Pool,
			Project: strings.TrimSpace(d.Project),
			Symbol:  d.Symbol,
			Chain:   d.Chain,
			APY:     d.APY.Float(),
			TVLUSD:  d.TVLUSD.Float(),
		})
	}
	sort.SliceStable(pools, func(i, j int) bool { return pools[i].TVLUSD > pools[j].TVLUSD })

	out := make([]domain.Record, len(pools))
	for i, r := range pools {
		out[i] = r
	}
	return nonEmpty(p.Name(), out)
}

// poolHasSymbol matches pool symbols such as "SOL-USDC" against tickers.
func poolHasSymbol(poolSymbol string, symbols map[string]bool) bool {
	for _, part := range strings.FieldsFunc(strings.ToUpper(poolSymbol), func(r rune) bool {
		return r == '-' || r == '/' || r == ' ' || r == '_'
	}) {
		if symbols[part] {
			return true
		}
	}
	return false
}
