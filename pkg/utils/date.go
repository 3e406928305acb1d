package utils

// DateRangeKey normaliza um par since/until (ou preset) para compor chaves de
// cache estáveis.
func DateRangeKey(since, until, preset string) string {
	if preset != "" {
		return "preset:" + preset
	}
	return since + ".." + until
}
