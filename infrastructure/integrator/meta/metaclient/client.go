package metaclient

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
)

// Client busca páginas de insights no Graph API tolerando falhas
// transitórias, limitação de chamadas e rejeição de campos pelo upstream.
type Client interface {
	FetchInsights(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest descreve uma consulta de insights já validada: contas,
// nível, campos e janela de tempo.
type FetchRequest struct {
	Accounts              []string
	Level                 string
	Fields                []string
	Since                 string
	Until                 string
	DatePreset            string
	TimeIncrement         string
	Breakdowns            []string
	UseUnifiedAttribution bool
	ActionReportTime      string
	AccessToken           string
	APIVersion            string
}

// FetchResult acumula as linhas brutas de todas as contas, na ordem da
// requisição, mais os campos removidos pelo reparo automático.
type FetchResult struct {
	Count         int
	Rows          []map[string]any
	RemovedFields []string
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type MetaClient struct {
	Cfg  *config.Config
	HTTP HTTPClient

	// Sleep é injetável para os testes não esperarem o backoff real.
	Sleep func(time.Duration)
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg:   cfg,
		HTTP:  &http.Client{Timeout: 90 * time.Second},
		Sleep: time.Sleep,
	}
}

// baseURL resolve a versão do Graph API: a da requisição, quando informada,
// senão a configurada no servidor.
func (c *MetaClient) baseURL(apiVersion string) string {
	if apiVersion == "" {
		apiVersion = c.Cfg.Meta.Version
	}
	return c.Cfg.Meta.BaseURL + "/" + apiVersion
}
