package settings

import "github.com/pkg/errors"

var (
	// ErrMetricNotFound indica que o id de métrica não existe nas
	// configurações atuais.
	ErrMetricNotFound = errors.New("custom metric not found")

	// ErrInvalidFormula indica que a fórmula não compila ou não produz um
	// número finito na validação de criação.
	ErrInvalidFormula = errors.New("invalid custom metric formula")

	// ErrMissingName indica criação de métrica sem nome.
	ErrMissingName = errors.New("metric name is required")
)
