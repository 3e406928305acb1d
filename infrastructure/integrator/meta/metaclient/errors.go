package metaclient

import (
	"fmt"
	"regexp"
	"strings"
)

// graphThrottleCode é o código de erro do Graph API para limitação de
// chamadas da aplicação.
const graphThrottleCode = 4

// GraphError é uma resposta de erro terminal do Graph API: status HTTP,
// mensagem do upstream e o payload bruto para diagnóstico.
type GraphError struct {
	Status  int
	Message string
	Type    string
	Code    int
	Subcode int
	Payload map[string]any
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("graph api error status=%d code=%d subcode=%d: %s", e.Status, e.Code, e.Subcode, e.Message)
}

// IsThrottle responde se o erro é de limitação de chamadas e deve ser
// repetido com backoff exponencial.
func (e *GraphError) IsThrottle() bool {
	return e != nil && (e.Status == 429 || e.Code == graphThrottleCode)
}

// TransportError é uma falha de rede/transporte (não uma resposta HTTP de
// erro); repetida com backoff linear.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// invalidFieldsPattern reconhece as mensagens com que o Graph API rejeita
// nomes de campo, por exemplo:
//
//	(#100) field1, field2 are not valid for fields param
//	(#100) nonsense is not valid for fields param
var invalidFieldsPattern = regexp.MustCompile(`(?i)([\w,\s.]+?)\s+(?:are|is) not valid for fields param`)

// errorCodePrefix remove prefixos de código como "(#100) " da mensagem.
var errorCodePrefix = regexp.MustCompile(`^\s*\(#\d+\)\s*`)

// RejectedFields extrai da mensagem de erro exatamente os nomes de campo que
// o upstream recusou. Lista vazia significa que o erro não é de validação de
// campos.
func RejectedFields(message string) []string {
	message = errorCodePrefix.ReplaceAllString(message, "")

	match := invalidFieldsPattern.FindStringSubmatch(message)
	if match == nil {
		return nil
	}

	var fields []string
	for _, part := range strings.Split(match[1], ",") {
		field := strings.TrimSpace(part)
		if field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}
