package normalizing

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// arraySourceFields são os campos de origem com valor em array que o
// normalizador achata por conta própria, direto da linha bruta, caso o
// servidor ainda não os tenha expandido.
var arraySourceFields = []string{
	"actions",
	"action_values",
	"unique_actions",
	"conversions",
	"conversion_values",
	"cost_per_action_type",
	"cost_per_unique_action_type",
	"cost_per_conversion",
	"cost_per_thruplay",
	"cost_per_outbound_click",
	"cost_per_unique_outbound_click",
	"cost_per_15_sec_video_view",
	"cost_per_2_sec_continuous_video_view",
	"purchase_roas",
	"website_purchase_roas",
	"mobile_app_purchase_roas",
	"outbound_clicks",
	"outbound_clicks_ctr",
	"unique_outbound_clicks",
	"unique_outbound_clicks_ctr",
	"video_play_actions",
	"video_p25_watched_actions",
	"video_p50_watched_actions",
	"video_p75_watched_actions",
	"video_p95_watched_actions",
	"video_p100_watched_actions",
	"video_avg_time_watched_actions",
	"video_30_sec_watched_actions",
	"video_thruplay_watched_actions",
	"video_continuous_2_sec_watched_actions",
}

// entryTypeKeys são as chaves consultadas, nesta ordem, para resolver o tipo
// de uma entrada de array; a primeira presente vence.
var entryTypeKeys = []string{"action_type", "name", "label", "metric", "type"}

// identityFields não participam da bolsa de campos numéricos.
var identityFields = map[string]bool{
	"account_id":    true,
	"account_name":  true,
	"campaign_id":   true,
	"campaign_name": true,
	"adset_id":      true,
	"adset_name":    true,
	"ad_id":         true,
	"ad_name":       true,
	"date_start":    true,
	"date_stop":     true,
}

// coreNumericFields são promovidos ao nível superior da linha normalizada e
// por isso ficam fora da bolsa.
var coreNumericFields = map[string]bool{
	"impressions":     true,
	"clicks":          true,
	"spend":           true,
	"results":         true,
	"ctr":             true,
	"cpm":             true,
	"cpc":             true,
	"cost_per_result": true,
	"roas":            true,
}

var nonIdentRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize converte uma linha achatada do servidor no modelo canônico em
// memória: identidade estável, métricas principais com default 0, razões
// derivadas e a bolsa aberta de campos numéricos adicionais.
func Normalize(row domain.FlatRow) *domain.NormalizedRow {
	out := &domain.NormalizedRow{
		Extra: domain.NewFieldBag(),
		Raw:   row,
	}

	out.DateStart = stringField(row, "date_start")
	out.DateStop = stringField(row, "date_stop")
	out.Name = firstString(row, "campaign_name", "adset_name", "ad_name", "account_name")
	if out.Name == "" {
		out.Name = "Unnamed"
	}

	out.ID = firstString(row, "campaign_id", "adset_id", "ad_id", "account_name")
	if out.ID == "" {
		// Identidade sintética: nome mais o intervalo de datas.
		out.ID = fmt.Sprintf("%s_%s_%s", out.Name, out.DateStart, out.DateStop)
	}

	out.Impressions = numberOrZero(row["impressions"])
	out.Clicks = numberOrZero(row["clicks"])
	out.Spend = numberOrZero(row["spend"])
	out.Results = numberOrZero(row["results"])

	mergeScalarFields(out, row)
	mergeArrayFields(out, row)

	out.Value = bagOrZero(out, "action_values_purchase")

	computeRatios(out)

	return out
}

// NormalizeAll normaliza cada linha de um lote, preservando a ordem.
func NormalizeAll(rows []domain.FlatRow) []*domain.NormalizedRow {
	out := make([]*domain.NormalizedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, Normalize(row))
	}
	return out
}

// mergeScalarFields percorre os campos escalares da linha de origem e mescla
// cada valor numérico com chave segura na bolsa, aplicando a regra
// assimétrica de soma. Campos com valor em array ficam para mergeArrayFields.
func mergeScalarFields(out *domain.NormalizedRow, row domain.FlatRow) {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if identityFields[key] || coreNumericFields[key] {
			continue
		}

		switch row[key].(type) {
		case []any, map[string]any:
			continue
		}

		if n, ok := ToNumber(row[key]); ok {
			out.Extra.Merge(key, n)
		}
	}
}

// mergeArrayFields achata os campos de origem em array diretamente da linha
// bruta. Entradas sem tipo resolvível ou com valor não numérico são puladas.
func mergeArrayFields(out *domain.NormalizedRow, row domain.FlatRow) {
	for _, field := range arraySourceFields {
		entries, ok := row[field].([]any)
		if !ok {
			continue
		}

		for _, item := range entries {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}

			ident := entryIdent(entry)
			if ident == "" {
				continue
			}

			value, ok := ToNumber(entry["value"])
			if !ok {
				continue
			}

			out.Extra.Merge(field+"_"+ident, value)
		}
	}
}

// computeRatios deriva as razões a partir dos totais da linha; denominador
// zero resulta em 0, nunca NaN ou Inf.
func computeRatios(out *domain.NormalizedRow) {
	if out.Impressions > 0 {
		out.CTR = out.Clicks / out.Impressions
		out.CPM = out.Spend / out.Impressions * 1000
	}
	if out.Clicks > 0 {
		out.CPC = out.Spend / out.Clicks
	}
	if out.Results > 0 {
		out.CostPerResult = out.Spend / out.Results
	}

	// Preferir o ROAS calculado pelo upstream; só derivar de valor/
	// investimento quando ele não veio. A ordem importa.
	if roas := bagOrZero(out, "purchase_roas_purchase"); roas > 0 {
		out.ROAS = roas
	} else if purchaseValue := bagOrZero(out, "action_values_purchase"); out.Spend > 0 && purchaseValue > 0 {
		out.ROAS = purchaseValue / out.Spend
	}
}

// entryIdent resolve o tipo de uma entrada de array e o sanitiza para um
// identificador seguro: minúsculas, sequências não alfanuméricas viram "_" e
// as bordas são aparadas.
func entryIdent(entry map[string]any) string {
	for _, key := range entryTypeKeys {
		if raw, ok := entry[key].(string); ok && raw != "" {
			return SanitizeIdent(raw)
		}
	}
	return ""
}

// SanitizeIdent reduz um rótulo arbitrário a um identificador seguro.
func SanitizeIdent(raw string) string {
	ident := nonIdentRuns.ReplaceAllString(strings.ToLower(raw), "_")
	return strings.Trim(ident, "_")
}

// ToNumber aceita números como estão e strings numéricas após trim; strings
// vazias ou não finitas e qualquer outro tipo são ausência.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func numberOrZero(value any) float64 {
	if n, ok := ToNumber(value); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return 0
}

func bagOrZero(out *domain.NormalizedRow, key string) float64 {
	if v, ok := out.Extra.Get(key); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return 0
}

func stringField(row domain.FlatRow, key string) string {
	if s, ok := row[key].(string); ok {
		return s
	}
	return ""
}

func firstString(row domain.FlatRow, keys ...string) string {
	for _, key := range keys {
		if s, ok := row[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
