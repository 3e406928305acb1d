package domain

// CustomMetric é uma métrica definida pelo usuário: uma fórmula aritmética
// restrita sobre campos nomeados. O id é um slug derivado do nome,
// desambiguado por sufixo numérico. Persistida nas configurações do painel.
type CustomMetric struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
	Enabled bool   `json:"enabled"`
}

// AccountRef identifica uma conta de anúncios adicionada manualmente.
type AccountRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Settings é o estado persistido do painel: um único registro chave-valor
// carregado na inicialização e gravado a cada mutação de configuração ou de
// métrica customizada.
type Settings struct {
	Token          string         `json:"token,omitempty"`
	Accounts       []string       `json:"accounts"`
	ManualAccounts []AccountRef   `json:"manualAccounts"`
	CustomMetrics  []CustomMetric `json:"customMetrics"`
}

// Clone devolve uma cópia profunda, evitando que chamadores alterem o cache
// compartilhado do repositório de configurações.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{Token: s.Token}
	out.Accounts = append([]string(nil), s.Accounts...)
	out.ManualAccounts = append([]AccountRef(nil), s.ManualAccounts...)
	out.CustomMetrics = append([]CustomMetric(nil), s.CustomMetrics...)
	return out
}

// MetricByID localiza uma métrica customizada pelo id.
func (s *Settings) MetricByID(id string) (CustomMetric, bool) {
	for _, m := range s.CustomMetrics {
		if m.ID == id {
			return m, true
		}
	}
	return CustomMetric{}, false
}
