package app

import (
	"regexp"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel/attribute"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// long runs of positional parameters, e.g. IN lists over a whole leaderboard
	placeholderRunRegex = regexp.MustCompile(`\$(\d+)(?:\s*,\s*\$\d+){6,}\s*,\s*\$(\d+)`)
)

func dbTraceOptions(dsn, serviceName string) []otelsql.Option {
	attrs := []attribute.KeyValue{attribute.String("db.system", "postgresql")}
	if serviceName != "" {
		attrs = append(attrs, attribute.String("service.component", serviceName+"/store"))
	}
	return []otelsql.Option{
		otelsql.WithAttributes(attrs...),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatTracedQuery),
	}
}

func formatTracedQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderRunRegex.ReplaceAllString(normalized, "$$$1, ..., $$$2")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
