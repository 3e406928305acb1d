package domain

import (
	"bytes"
	"math"
	"regexp"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FlatRow é a saída do achatamento no servidor: apenas campos escalares,
// nenhum array ou objeto aninhado sobrevive. Valores são string ou float64.
type FlatRow map[string]any

// SafeFieldPattern valida identificadores de campo aceitos no modelo tabular.
var SafeFieldPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// FieldBag é um mapa ordenado de campos numéricos adicionais de uma linha
// normalizada. Chaves são validadas contra SafeFieldPattern na inserção e a
// ordem de inserção é preservada na serialização.
type FieldBag struct {
	keys   []string
	values map[string]float64
}

func NewFieldBag() *FieldBag {
	return &FieldBag{values: make(map[string]float64)}
}

// Merge insere um valor numérico na bolsa de campos seguindo a regra
// assimétrica observada no pipeline original: quando a chave já contém um
// número finito, o novo valor é SOMADO (preserva totais acumulados entre
// páginas); caso contrário o último escritor vence. Essa assimetria é
// intencional e não deve ser "corrigida".
func (b *FieldBag) Merge(key string, value float64) bool {
	if !SafeFieldPattern.MatchString(key) {
		return false
	}

	prev, exists := b.values[key]
	if exists && !math.IsNaN(prev) && !math.IsInf(prev, 0) {
		b.values[key] = prev + value
		return true
	}

	if !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return true
}

// Set sobrescreve incondicionalmente, ignorando a regra de soma.
func (b *FieldBag) Set(key string, value float64) bool {
	if !SafeFieldPattern.MatchString(key) {
		return false
	}
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return true
}

func (b *FieldBag) Get(key string) (float64, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Keys retorna as chaves na ordem de inserção.
func (b *FieldBag) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b *FieldBag) Len() int {
	return len(b.keys)
}

// NormalizedRow é o modelo canônico de linha usado por toda a aplicação:
// identidade estável, métricas principais sempre presentes (default 0),
// razões derivadas e uma bolsa aberta de campos numéricos adicionais.
type NormalizedRow struct {
	ID        string
	Name      string
	DateStart string
	DateStop  string

	Impressions float64
	Clicks      float64
	Spend       float64
	Results     float64
	Value       float64

	CTR           float64
	CPM           float64
	CPC           float64
	CostPerResult float64
	ROAS          float64

	Extra *FieldBag

	// Raw mantém a linha original para consultas de campos que não foram
	// promovidos ao nível superior.
	Raw FlatRow
}

// coreRowFields são os campos de nível superior resolvíveis por nome.
var coreRowFields = map[string]func(*NormalizedRow) float64{
	"impressions":     func(r *NormalizedRow) float64 { return r.Impressions },
	"clicks":          func(r *NormalizedRow) float64 { return r.Clicks },
	"spend":           func(r *NormalizedRow) float64 { return r.Spend },
	"results":         func(r *NormalizedRow) float64 { return r.Results },
	"value":           func(r *NormalizedRow) float64 { return r.Value },
	"ctr":             func(r *NormalizedRow) float64 { return r.CTR },
	"cpm":             func(r *NormalizedRow) float64 { return r.CPM },
	"cpc":             func(r *NormalizedRow) float64 { return r.CPC },
	"cost_per_result": func(r *NormalizedRow) float64 { return r.CostPerResult },
	"roas":            func(r *NormalizedRow) float64 { return r.ROAS },
}

// CoreRowFields retorna os nomes dos campos principais em ordem estável.
func CoreRowFields() []string {
	out := make([]string, 0, len(coreRowFields))
	for k := range coreRowFields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup resolve um campo pelo nome: campos principais primeiro, depois a
// bolsa de campos adicionais.
func (r *NormalizedRow) Lookup(field string) (float64, bool) {
	if getter, ok := coreRowFields[field]; ok {
		return getter(r), true
	}
	if r.Extra != nil {
		if v, ok := r.Extra.Get(field); ok {
			return v, true
		}
	}
	return 0, false
}

// MarshalJSON serializa a linha como um objeto plano, espelhando o formato
// consumido pela tabela e pelos gráficos: identidade, métricas principais,
// razões e por fim os campos da bolsa na ordem de inserção. Valores não
// finitos viram null.
func (r *NormalizedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeString := func(key, value string, first bool) {
		if !first {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(value)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	writeNumber := func(key string, value float64) {
		buf.WriteByte(',')
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		if math.IsNaN(value) || math.IsInf(value, 0) {
			buf.WriteString("null")
			return
		}
		v, _ := json.Marshal(value)
		buf.Write(v)
	}

	writeString("id", r.ID, true)
	writeString("name", r.Name, false)
	writeString("date_start", r.DateStart, false)
	writeString("date_stop", r.DateStop, false)

	writeNumber("impressions", r.Impressions)
	writeNumber("clicks", r.Clicks)
	writeNumber("spend", r.Spend)
	writeNumber("results", r.Results)
	writeNumber("value", r.Value)
	writeNumber("ctr", r.CTR)
	writeNumber("cpm", r.CPM)
	writeNumber("cpc", r.CPC)
	writeNumber("cost_per_result", r.CostPerResult)
	writeNumber("roas", r.ROAS)

	if r.Extra != nil {
		for _, key := range r.Extra.Keys() {
			if _, core := coreRowFields[key]; core {
				continue
			}
			v, _ := r.Extra.Get(key)
			writeNumber(key, v)
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BreakdownEntry é uma fatia de distribuição por dimensão (plataforma,
// posicionamento, gênero, região). Derivada, nunca persistida.
type BreakdownEntry struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Percent     float64 `json:"percent"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Results     float64 `json:"results"`
	Color       string  `json:"color"`
}
