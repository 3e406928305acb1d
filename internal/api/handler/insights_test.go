package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting/mocks"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
)

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var apiErr apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestPostInsightsSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	service.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			assert.Equal(t, []string{"act_123"}, req.Accounts)
			assert.Equal(t, "campaign", req.Level)
			return &domain.InsightsResponse{
				Count: 1,
				Rows:  []domain.FlatRow{{"campaign_id": "1", "spend": 40.0}},
			}, nil
		})

	rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights",
		`{"accounts":["act_123"],"level":"campaign"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"campaign_id":"1"`)
}

func TestPostInsightsRejectsMalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights", `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidFormat, decodeAPIError(t, rec).Code)
}

func TestPostInsightsValidatesRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no accounts", `{"accounts":[],"level":"campaign"}`},
		{"bad account id", `{"accounts":["123"],"level":"campaign"}`},
		{"bad level", `{"accounts":["act_123"],"level":"keyword"}`},
		{"bad date", `{"accounts":["act_123"],"level":"ad","since":"01/01/2024"}`},
		{"unsafe field", `{"accounts":["act_123"],"level":"ad","fields":["spend;drop table"]}`},
		{"too many breakdowns", `{"accounts":["act_123"],"level":"ad","breakdowns":["age","gender","region"]}`},
	}

	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apiErrors.ErrInvalidRequest, decodeAPIError(t, rec).Code)
		})
	}
}

func TestPostInsightsGraphErrorIsClientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	service.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(nil, &metaclient.GraphError{
			Status:  400,
			Code:    100,
			Message: "(#100) reach is not valid for fields param",
		})

	rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights",
		`{"accounts":["act_123"],"level":"ad"}`)

	// Falha terminal do upstream é culpa da consulta, nunca 5xx.
	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeAPIError(t, rec)
	assert.Equal(t, apiErrors.ErrUpstreamRejected, apiErr.Code)
	assert.Equal(t, "(#100) reach is not valid for fields param", apiErr.Message)
}

func TestPostInsightsTransportErrorIsBadGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	service.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(nil, &metaclient.TransportError{Err: fmt.Errorf("connection refused")})

	rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights",
		`{"accounts":["act_123"],"level":"ad"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, apiErrors.ErrExternalService, decodeAPIError(t, rec).Code)
}

func TestPostInsightsUnknownErrorIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	service.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("boom"))

	rec := doRequest(t, PostInsights(service), http.MethodPost, "/api/insights",
		`{"accounts":["act_123"],"level":"ad"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apiErrors.ErrInternalServer, decodeAPIError(t, rec).Code)
}

func TestPostDashboardSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	row := &domain.NormalizedRow{ID: "1", Name: "Campanha A", Spend: 40}
	service.EXPECT().
		RefreshDashboard(gomock.Any(), gomock.Any()).
		Return(&domain.DashboardResponse{
			Rows:   []*domain.NormalizedRow{row},
			Totals: row,
			Breakdowns: map[string][]*domain.BreakdownEntry{
				"gender": {{Name: "female", Amount: 40, Percent: 100}},
			},
		}, nil)

	rec := doRequest(t, PostDashboard(service), http.MethodPost, "/api/dashboard",
		`{"accounts":["act_123"],"level":"campaign"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Campanha A"`)
	assert.Contains(t, rec.Body.String(), `"gender"`)
}

func TestPostDashboardValidatesLikeInsights(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockInsighter(ctrl)

	rec := doRequest(t, PostDashboard(service), http.MethodPost, "/api/dashboard",
		`{"accounts":["act_abc"],"level":"campaign"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidRequest, decodeAPIError(t, rec).Code)
}
