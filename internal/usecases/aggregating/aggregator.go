package aggregating

import (
	"math"
	"sort"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/utils"
)

// palette são as cores atribuídas às fatias de distribuição, na ordem em que
// aparecem depois da ordenação por volume.
var palette = []string{
	"#4267B2",
	"#E1306C",
	"#25D366",
	"#F7B928",
	"#8A3AB9",
	"#00B5AD",
	"#FF6F61",
	"#5C6BC0",
	"#9CCC65",
	"#78909C",
}

// AggregateByID condensa várias linhas com a mesma identidade (tipicamente a
// mesma campanha em dias diferentes) em uma única linha: métricas somadas,
// intervalo de datas estendido e razões recalculadas a partir dos totais.
func AggregateByID(rows []*domain.NormalizedRow) []*domain.NormalizedRow {
	order := make([]string, 0, len(rows))
	groups := make(map[string]*domain.NormalizedRow)
	lastROAS := make(map[string]float64)

	for _, row := range rows {
		key := row.ID
		if key == "" {
			key = row.Name
		}

		agg, ok := groups[key]
		if !ok {
			agg = &domain.NormalizedRow{
				ID:        row.ID,
				Name:      row.Name,
				DateStart: row.DateStart,
				DateStop:  row.DateStop,
				Extra:     domain.NewFieldBag(),
				Raw:       row.Raw,
			}
			groups[key] = agg
			order = append(order, key)
		}

		agg.Impressions += row.Impressions
		agg.Clicks += row.Clicks
		agg.Spend += row.Spend
		agg.Results += row.Results
		agg.Value += row.Value

		if row.DateStart != "" && (agg.DateStart == "" || row.DateStart < agg.DateStart) {
			agg.DateStart = row.DateStart
		}
		if row.DateStop > agg.DateStop {
			agg.DateStop = row.DateStop
		}

		if row.Extra != nil {
			for _, field := range row.Extra.Keys() {
				v, _ := row.Extra.Get(field)
				agg.Extra.Merge(field, v)
			}
		}

		if row.ROAS > 0 {
			lastROAS[key] = row.ROAS
		}
	}

	out := make([]*domain.NormalizedRow, 0, len(order))
	for _, key := range order {
		agg := groups[key]
		recomputeRatios(agg, lastROAS[key])
		out = append(out, agg)
	}
	return out
}

// Totals reduz todas as linhas a uma única linha de totais do período.
func Totals(rows []*domain.NormalizedRow) *domain.NormalizedRow {
	if len(rows) == 0 {
		return &domain.NormalizedRow{ID: "totals", Name: "Totals", Extra: domain.NewFieldBag()}
	}

	merged := make([]*domain.NormalizedRow, 0, len(rows))
	for _, row := range rows {
		clone := *row
		clone.ID = "totals"
		clone.Name = "Totals"
		merged = append(merged, &clone)
	}

	agg := AggregateByID(merged)
	return agg[0]
}

// recomputeRatios recalcula as razões a partir das somas; razões somadas
// linha a linha seriam aritmética errada (ctr de 2+3 cliques sobre 100+100
// impressões é 0.025, não a média 0.0125).
func recomputeRatios(agg *domain.NormalizedRow, fallbackROAS float64) {
	agg.CTR, agg.CPM, agg.CPC, agg.CostPerResult, agg.ROAS = 0, 0, 0, 0, 0

	if agg.Impressions > 0 {
		agg.CTR = agg.Clicks / agg.Impressions
		agg.CPM = agg.Spend / agg.Impressions * 1000
	}
	if agg.Clicks > 0 {
		agg.CPC = agg.Spend / agg.Clicks
	}
	if agg.Results > 0 {
		agg.CostPerResult = agg.Spend / agg.Results
	}

	if agg.Spend > 0 && agg.Value > 0 {
		agg.ROAS = agg.Value / agg.Spend
	} else if fallbackROAS > 0 {
		agg.ROAS = fallbackROAS
	}
}

type breakdownGroup struct {
	name        string
	spend       float64
	value       float64
	results     float64
	clicks      float64
	impressions float64
}

// BreakdownDistribution agrupa as linhas pelo valor de uma dimensão de
// breakdown (publisher_platform, gender, ...) e produz as fatias com volume e
// percentual. O volume de cada fatia é o primeiro positivo na escada
// investimento → valor → resultados → cliques → impressões, e o percentual é
// calculado contra o total do grupo resolvido pela mesma escada.
func BreakdownDistribution(rows []*domain.NormalizedRow, dimension string) []*domain.BreakdownEntry {
	order := make([]string, 0)
	groups := make(map[string]*breakdownGroup)
	var total breakdownGroup

	for _, row := range rows {
		name := "Unknown"
		if raw, ok := row.Raw[dimension].(string); ok && raw != "" {
			name = raw
		}

		group, ok := groups[name]
		if !ok {
			group = &breakdownGroup{name: name}
			groups[name] = group
			order = append(order, name)
		}

		group.spend += row.Spend
		group.value += row.Value
		group.results += row.Results
		group.clicks += row.Clicks
		group.impressions += row.Impressions

		total.spend += row.Spend
		total.value += row.Value
		total.results += row.Results
		total.clicks += row.Clicks
		total.impressions += row.Impressions
	}

	totalAmount := firstPositive(&total)

	out := make([]*domain.BreakdownEntry, 0, len(order))
	for _, name := range order {
		group := groups[name]
		amount := firstPositive(group)

		percent := 0.0
		if totalAmount > 0 {
			percent = utils.RoundWithTwoDecimalPlace(amount / totalAmount * 100)
			if math.IsNaN(percent) || math.IsInf(percent, 0) {
				percent = 0
			}
		}

		out = append(out, &domain.BreakdownEntry{
			Name:        group.name,
			Amount:      amount,
			Percent:     percent,
			Spend:       group.spend,
			Impressions: group.impressions,
			Clicks:      group.clicks,
			Results:     group.results,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})

	for i, entry := range out {
		entry.Color = palette[i%len(palette)]
	}

	return out
}

func firstPositive(g *breakdownGroup) float64 {
	for _, v := range []float64{g.spend, g.value, g.results, g.clicks, g.impressions} {
		if v > 0 {
			return v
		}
	}
	return 0
}
