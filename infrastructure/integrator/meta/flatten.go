package meta

import (
	"math"
	"strconv"
	"strings"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// actionArrayFields são os campos cujo valor é um array de registros
// {action_type, value} e que são expandidos em campos escalares sintéticos
// "{campo}_{action_type}".
var actionArrayFields = []string{
	"actions",
	"action_values",
	"purchase_roas",
	"website_purchase_roas",
	"cost_per_action_type",
	"outbound_clicks",
	"outbound_clicks_ctr",
	"unique_outbound_clicks",
}

// totalizedFields também contribuem com uma chave-resumo "_total" somando os
// valores de todas as entradas.
var totalizedFields = map[string]bool{
	"outbound_clicks":     true,
	"outbound_clicks_ctr": true,
}

// FlattenRow converte um objeto bruto de insight em um FlatRow: escalares de
// nível superior copiados como vieram, arrays de ação expandidos em chaves
// sintéticas e métricas derivadas mescladas ao final. Entradas malformadas
// são silenciosamente puladas ou armazenadas como NaN; nunca há erro.
func FlattenRow(raw map[string]any, resultActionType string) domain.FlatRow {
	flat := make(domain.FlatRow, len(raw))

	for key, value := range raw {
		switch value.(type) {
		case []any, map[string]any:
			// Arrays e objetos são descartados nesta etapa; os arrays de
			// ação reconhecidos são expandidos logo abaixo.
		default:
			flat[key] = value
		}
	}

	for _, field := range actionArrayFields {
		entries, ok := raw[field].([]any)
		if !ok {
			continue
		}

		total := 0.0
		for _, item := range entries {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}

			actionType, _ := entry["action_type"].(string)
			if actionType == "" {
				continue
			}

			value := entryNumber(entry["value"])
			flat[field+"_"+actionType] = value
			if !math.IsNaN(value) {
				total += value
			}
		}

		if totalizedFields[field] {
			flat[field+"_total"] = total
		}
	}

	addDerived(flat, resultActionType)

	return flat
}

// addDerived mescla "results", "cost_per_result" e "result_rate" quando os
// campos de origem são numéricos e positivos.
func addDerived(flat domain.FlatRow, resultActionType string) {
	if resultActionType == "" {
		resultActionType = domain.DefaultResultActionType
	}

	results, ok := scalarNumber(flat["actions_"+resultActionType])
	if !ok {
		return
	}
	flat["results"] = results

	if spend, ok := scalarNumber(flat["spend"]); ok && results > 0 {
		flat["cost_per_result"] = spend / results
	}

	if impressions, ok := scalarNumber(flat["impressions"]); ok && impressions > 0 && results > 0 {
		flat["result_rate"] = results / impressions
	}
}

// entryNumber converte o valor de uma entrada de ação; valores não numéricos
// viram NaN mas ainda são armazenados.
func entryNumber(value any) float64 {
	if n, ok := scalarNumber(value); ok {
		return n
	}
	return math.NaN()
}

// scalarNumber aceita números como estão e strings numéricas após trim;
// qualquer outra coisa é ausência.
func scalarNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
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
