package domain

import "regexp"

// AccountIDPattern valida ids de conta do formato "act_<dígitos>".
var AccountIDPattern = regexp.MustCompile(`^act_[0-9]+$`)

// DefaultResultActionType é o tipo de ação usado para derivar "results"
// quando a requisição não informa outro.
const DefaultResultActionType = "purchase"

// DashboardBreakdowns são as quatro dimensões consultadas em paralelo a cada
// ciclo de atualização do painel.
var DashboardBreakdowns = []string{
	"publisher_platform",
	"platform_position",
	"gender",
	"region",
}

// InsightsRequest é o corpo de POST /api/insights. As tags de validação
// rejeitam entradas malformadas antes de qualquer chamada de rede.
type InsightsRequest struct {
	Accounts              []string `json:"accounts" validate:"required,min=1,dive,meta_account_id"`
	Level                 string   `json:"level" validate:"required,oneof=campaign adset ad"`
	Fields                []string `json:"fields" validate:"omitempty,dive,safe_field"`
	Since                 string   `json:"since" validate:"omitempty,datetime=2006-01-02"`
	Until                 string   `json:"until" validate:"omitempty,datetime=2006-01-02"`
	DatePreset            string   `json:"datePreset" validate:"omitempty,safe_field"`
	TimeIncrement         string   `json:"timeIncrement"`
	Breakdowns            []string `json:"breakdowns" validate:"omitempty,max=2,dive,safe_field"`
	UseUnifiedAttribution bool     `json:"useUnifiedAttribution"`
	ActionReportTime      string   `json:"actionReportTime" validate:"omitempty,oneof=mixed impression conversion lifetime"`
	ResultActionType      string   `json:"resultActionType" validate:"omitempty,safe_field"`
	APIVersion            string   `json:"apiVersion"`
	Token                 string   `json:"token"`
}

// InsightsResponse é a resposta de POST /api/insights: linhas achatadas mais
// a lista de campos removidos pelo reparo automático, quando houver.
type InsightsResponse struct {
	Count         int       `json:"count"`
	Rows          []FlatRow `json:"rows"`
	RemovedFields []string  `json:"removedFields,omitempty"`
}

// DashboardMetric carrega os valores de uma métrica customizada por linha
// exibida. Valores não finitos são omitidos (a tabela renderiza "-").
type DashboardMetric struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
}

// DashboardResponse é o resultado de um ciclo de atualização completo:
// a consulta principal agregada por campanha mais as quatro distribuições de
// breakdown, resolvidas em conjunto.
type DashboardResponse struct {
	Rows          []*NormalizedRow            `json:"rows"`
	Totals        *NormalizedRow              `json:"totals"`
	Breakdowns    map[string][]*BreakdownEntry `json:"breakdowns"`
	CustomMetrics []DashboardMetric           `json:"customMetrics,omitempty"`
	RemovedFields []string                    `json:"removedFields,omitempty"`
}

// ConfigResponse é a resposta de GET /api/config com os defaults efetivos do
// servidor para o front end montar a primeira consulta.
type ConfigResponse struct {
	APIVersion           string       `json:"apiVersion"`
	DefaultLevel         string       `json:"defaultLevel"`
	DefaultTimeIncrement string       `json:"defaultTimeIncrement"`
	DefaultFields        []string     `json:"defaultFields"`
	Accounts             []AccountRef `json:"accounts"`
	HasServerToken       bool         `json:"hasServerToken"`
}
