package metaclient

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Falhas de transporte: até 3 tentativas adicionais com backoff linear.
	maxTransportRetries = 3
	transportBackoff    = 500 * time.Millisecond

	// Limitação de chamadas: até 6 tentativas adicionais com backoff
	// exponencial limitado a 60s.
	maxThrottleRetries = 6
	maxThrottleBackoff = 60 * time.Second

	pageLimit = 500
)

// coreInsightFields são sempre reincluídos na requisição, independentemente
// dos reparos de campos: garantem que identidade e fontes de métricas
// derivadas nunca sejam descartadas por acidente.
var coreInsightFields = []string{
	"account_name",
	"campaign_id",
	"campaign_name",
	"adset_id",
	"adset_name",
	"ad_id",
	"ad_name",
	"impressions",
	"clicks",
	"spend",
	"actions",
	"action_values",
	"date_start",
	"date_stop",
}

// FetchInsights busca todas as páginas de insights das contas solicitadas.
// Quando o upstream rejeita nomes de campo, os campos apontados são
// removidos do conjunto, a paginação recomeça do zero e os nomes removidos
// são acumulados para serem devolvidos ao chamador junto do resultado.
func (c *MetaClient) FetchInsights(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	fields := append([]string(nil), req.Fields...)
	if len(fields) == 0 {
		fields = append(fields, c.Cfg.Meta.DefaultFields...)
	}

	var removed []string

	for {
		rows, err := c.fetchAllAccounts(ctx, req, withCoreFields(fields))
		if err == nil {
			result := &FetchResult{Count: len(rows), Rows: rows}
			if len(removed) > 0 {
				result.RemovedFields = removed
			}
			return result, nil
		}

		var graphErr *GraphError
		if !errors.As(err, &graphErr) {
			return nil, err
		}

		rejected := RejectedFields(graphErr.Message)
		if len(rejected) == 0 {
			return nil, err
		}

		before := len(fields)
		fields = removeFields(fields, rejected)
		removed = appendUnique(removed, rejected)

		logrus.WithFields(logrus.Fields{
			"rejected_fields":  rejected,
			"remaining_fields": len(fields),
		}).Warn("insights: upstream rejected field names, retrying without them")

		if len(fields) == 0 {
			return nil, &GraphError{
				Status:  400,
				Message: "nenhum campo solicitado restou após o reparo de campos rejeitados",
				Payload: graphErr.Payload,
			}
		}
		if len(fields) == before {
			// O upstream rejeitou apenas campos do conjunto núcleo; não há
			// mais o que reparar.
			return nil, err
		}
	}
}

// fetchAllAccounts percorre as contas sequencialmente e as páginas de cada
// conta via paging.next, acumulando as linhas na ordem da requisição.
func (c *MetaClient) fetchAllAccounts(ctx context.Context, req *FetchRequest, fields []string) ([]map[string]any, error) {
	all := make([]map[string]any, 0)

	for _, account := range req.Accounts {
		pageURL := c.insightsURL(account, req, fields)

		for pageURL != "" {
			payload, err := c.getJSON(ctx, pageURL)
			if err != nil {
				return nil, err
			}

			if data, ok := payload["data"].([]any); ok {
				for _, item := range data {
					if row, ok := item.(map[string]any); ok {
						all = append(all, row)
					}
				}
			}

			pageURL = nextPageURL(payload)
		}
	}

	return all, nil
}

// insightsURL monta a URL da primeira página de insights de uma conta.
func (c *MetaClient) insightsURL(account string, req *FetchRequest, fields []string) string {
	params := &url.Values{}
	params.Add("level", req.Level)
	params.Add("fields", strings.Join(fields, ","))
	params.Add("limit", fmt.Sprintf("%d", pageLimit))

	if req.DatePreset != "" {
		params.Add("date_preset", req.DatePreset)
	} else if req.Since != "" && req.Until != "" {
		params.Add("time_range", fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", req.Since, req.Until))
	}

	if req.TimeIncrement != "" {
		params.Add("time_increment", req.TimeIncrement)
	}
	if len(req.Breakdowns) > 0 {
		params.Add("breakdowns", strings.Join(req.Breakdowns, ","))
	}
	if req.ActionReportTime != "" {
		params.Add("action_report_time", req.ActionReportTime)
	}
	if req.UseUnifiedAttribution {
		params.Add("use_unified_attribution_setting", "true")
	}

	token := req.AccessToken
	if token == "" {
		token = c.Cfg.Meta.AccessToken
	}
	params.Add("access_token", token)

	return fmt.Sprintf("%s/%s/insights?%s", c.baseURL(req.APIVersion), account, params.Encode())
}

// getJSON executa uma troca HTTP aplicando a política de limitação de
// chamadas: HTTP 429 ou código de erro 4 do Graph são repetidos com backoff
// exponencial limitado.
func (c *MetaClient) getJSON(ctx context.Context, rawURL string) (map[string]any, error) {
	for attempt := 0; ; attempt++ {
		payload, err := c.doRequest(ctx, rawURL)
		if err == nil {
			return payload, nil
		}

		var graphErr *GraphError
		if errors.As(err, &graphErr) && graphErr.IsThrottle() && attempt < maxThrottleRetries {
			backoff := throttleBackoff(attempt)
			logrus.WithFields(logrus.Fields{
				"attempt": attempt + 1,
				"backoff": backoff.String(),
			}).Warn("insights: graph api throttled the request, backing off")

			c.Sleep(backoff)
			continue
		}

		return nil, err
	}
}

// doRequest executa uma requisição com a política de transporte: erros de
// rede (não respostas HTTP de erro) são repetidos com backoff linear.
func (c *MetaClient) doRequest(ctx context.Context, rawURL string) (map[string]any, error) {
	var lastErr error

	for attempt := 0; attempt <= maxTransportRetries; attempt++ {
		if attempt > 0 {
			c.Sleep(time.Duration(attempt) * transportBackoff)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao criar a requisição")
		}

		resp, err := c.HTTP.Do(httpReq)
		if err != nil {
			lastErr = &TransportError{Err: err}
			logrus.WithError(err).WithField("attempt", attempt+1).Warn("insights: transport failure calling graph api")
			continue
		}

		return decodeResponse(resp)
	}

	return nil, lastErr
}

// decodeResponse lê o corpo e transforma respostas não-2xx no erro
// estruturado do Graph.
func decodeResponse(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var payload map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return nil, errors.Wrap(err, "erro ao decodificar resposta do Graph API")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, graphErrorFromPayload(resp.StatusCode, payload)
	}

	return payload, nil
}

func graphErrorFromPayload(status int, payload map[string]any) *GraphError {
	gerr := &GraphError{
		Status:  status,
		Message: http.StatusText(status),
		Payload: payload,
	}

	if errObj, ok := payload["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			gerr.Message = msg
		}
		if typ, ok := errObj["type"].(string); ok {
			gerr.Type = typ
		}
		if code, ok := errObj["code"].(float64); ok {
			gerr.Code = int(code)
		}
		if subcode, ok := errObj["error_subcode"].(float64); ok {
			gerr.Subcode = int(subcode)
		}
	}

	return gerr
}

func nextPageURL(payload map[string]any) string {
	paging, ok := payload["paging"].(map[string]any)
	if !ok {
		return ""
	}
	next, _ := paging["next"].(string)
	return next
}

func throttleBackoff(attempt int) time.Duration {
	backoff := time.Duration(1000*math.Pow(2, float64(attempt))) * time.Millisecond
	if backoff > maxThrottleBackoff {
		return maxThrottleBackoff
	}
	return backoff
}

// withCoreFields devolve o conjunto solicitado com os campos núcleo
// reacrescentados, preservando a ordem original.
func withCoreFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields)+len(coreInsightFields))

	for _, field := range fields {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	for _, field := range coreInsightFields {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}

func removeFields(fields, rejected []string) []string {
	drop := make(map[string]bool, len(rejected))
	for _, field := range rejected {
		drop[field] = true
	}

	out := fields[:0]
	for _, field := range fields {
		if !drop[field] {
			out = append(out, field)
		}
	}
	return out
}

func appendUnique(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, field := range existing {
		seen[field] = true
	}
	for _, field := range extra {
		if !seen[field] {
			seen[field] = true
			existing = append(existing, field)
		}
	}
	return existing
}

