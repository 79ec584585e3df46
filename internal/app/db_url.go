package app

import (
	"net/url"
	"strings"
)

type dbURLOptions struct {
	DisablePreparedBinaryResult bool
	// ApplicationName shows up in pg_stat_activity next to the leaderboard's sessions.
	ApplicationName string
}

// normalizeDBURL adds connection parameters the service relies on without
// overriding values already present. Both URL and keyword/value DSNs are accepted.
func normalizeDBURL(raw string, opts dbURLOptions) string {
	params := make([][2]string, 0, 2)
	if opts.DisablePreparedBinaryResult {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if name := strings.TrimSpace(opts.ApplicationName); name != "" {
		params = append(params, [2]string{"application_name", name})
	}
	if len(params) == 0 {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return withDSNParams(trimmed, params)
	}

	query := parsed.Query()
	changed := false
	for _, p := range params {
		if query.Get(p[0]) == "" {
			query.Set(p[0], p[1])
			changed = true
		}
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func withDSNParams(dsn string, params [][2]string) string {
	present := make(map[string]bool)
	for _, token := range strings.Fields(dsn) {
		if key, _, ok := strings.Cut(token, "="); ok {
			present[key] = true
		}
	}
	for _, p := range params {
		if present[p[0]] {
			continue
		}
		value := p[1]
		if strings.ContainsAny(value, " '") {
			value = "'" + strings.ReplaceAll(value, "'", `\'`) + "'"
		}
		dsn += " " + p[0] + "=" + value
	}
	return dsn
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		name, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		if name != "" {
			return name
		}
	}
	return ""
}
