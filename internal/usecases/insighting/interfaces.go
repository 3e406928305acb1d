package insighting

import (
	"context"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// Fetcher busca e achata insights no Graph API. Implementado pelo
// integrador do Meta; os testes usam um mock gerado.
type Fetcher interface {
	FetchInsights(ctx context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error)
}

// Insighter é o serviço de insights do painel: a consulta tabular crua e o
// ciclo completo de atualização do dashboard.
type Insighter interface {
	FetchInsights(ctx context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error)
	RefreshDashboard(ctx context.Context, req *domain.InsightsRequest) (*domain.DashboardResponse, error)
}
