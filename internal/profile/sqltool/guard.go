// Package sqltool runs model-authored SQL against the profile database
// behind a statement guard, with user scoping injected from the caller.
package sqltool

import (
	"regexp"
	"strings"

	"meal_planner_backend/platform/apperr"
)

var (
	leadingComment = regexp.MustCompile(`^\s*(--[^\n]*\n|/\*.*?\*/)`)
	dmlKeyword     = regexp.MustCompile(`(?i)\b(insert|update|delete|merge)\b`)
	rowLock        = regexp.MustCompile(`(?i)\bfor\s+(no\s+key\s+)?update\b`)
	userTableRef   = regexp.MustCompile(`(?i)\b(user_profiles|user_preferences|user_allergies|meal_plans|meal_plan_items)\b`)
	userIDParam    = regexp.MustCompile(`(?i)[:@]user_id\b`)

	blockedPrefixes = []string{
		"drop ",
		"truncate ",
		"grant ",
		"revoke ",
		"copy ",
		"create ",
		"alter ",
		"comment ",
		"security ",
		"do ",
		"vacuum",
		"reindex",
		"set ",
		"reset ",
		"begin",
		"commit",
		"rollback",
	}
)

// Check validates a single statement and returns its normalized form.
// Rejected statements return an apperr Forbidden or Validation error.
func Check(sql string) (string, error) {
	stmt := strings.TrimSpace(stripLeadingComments(sql))
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	if stmt == "" {
		return "", apperr.Validation("sql is required")
	}

	if hasMultipleStatements(stmt) {
		return "", apperr.Forbidden("only one SQL statement is allowed per call")
	}

	lower := strings.ToLower(strings.Join(strings.Fields(stmt), " "))
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(lower, prefix) || lower == strings.TrimSpace(prefix) {
			return "", apperr.Forbidden(strings.ToUpper(strings.TrimSpace(prefix)) + " statements are disabled")
		}
	}

	structure := stripLiterals(stmt)
	if strings.Contains(lower, `u&"`) || strings.Contains(lower, "u&'") {
		return "", apperr.Forbidden("unicode escape strings are disabled")
	}
	if strings.Contains(strings.ReplaceAll(lower, `"`, ""), "set_config") {
		return "", apperr.Forbidden("set_config is disabled")
	}

	if strings.HasPrefix(lower, "with") && dmlKeyword.MatchString(rowLock.ReplaceAllString(structure, " ")) {
		return "", apperr.Forbidden("data-modifying WITH queries are disabled")
	}

	if (strings.HasPrefix(lower, "delete ") || strings.HasPrefix(lower, "update ")) && !hasTopLevelWhere(structure) {
		verb := strings.ToUpper(strings.Fields(lower)[0])
		return "", apperr.Forbidden(verb + " without WHERE is disabled")
	}

	if userTableRef.MatchString(structure) && !userIDParam.MatchString(structure) {
		return "", apperr.Forbidden("statements on user tables must filter by :user_id")
	}

	return stmt, nil
}

// IsQuery reports whether the statement returns rows by itself.
func IsQuery(stmt string) bool {
	lower := strings.ToLower(strings.TrimSpace(stmt))
	return strings.HasPrefix(lower, "select") ||
		strings.HasPrefix(lower, "with") ||
		strings.HasPrefix(lower, "values") ||
		strings.Contains(lower, " returning ")
}

func stripLeadingComments(sql string) string {
	for {
		next := leadingComment.ReplaceAllString(sql, "")
		if next == sql {
			return sql
		}
		sql = next
	}
}

// hasTopLevelWhere looks for WHERE outside parentheses, so a WHERE inside a
// subquery does not scope the outer statement.
func hasTopLevelWhere(structure string) bool {
	lower := strings.ToLower(structure)
	depth := 0
	for i := 0; i < len(lower); i++ {
		switch lower[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case 'w':
			if depth > 0 || !strings.HasPrefix(lower[i:], "where") {
				continue
			}
			if (i == 0 || !isIdentChar(lower[i-1])) && (i+5 == len(lower) || !isIdentChar(lower[i+5])) {
				return true
			}
		}
	}
	return false
}

// hasMultipleStatements finds a semicolon outside quotes and comments.
func hasMultipleStatements(stmt string) bool {
	return strings.Contains(stripLiterals(stmt), ";")
}

// stripLiterals blanks out quoted strings, quoted identifiers and comments so
// keyword checks only see SQL structure.
func stripLiterals(stmt string) string {
	var b strings.Builder
	b.Grow(len(stmt))

	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		switch {
		case ch == '\'' || ch == '"':
			end := i + 1
			for end < len(stmt) {
				if stmt[end] == ch {
					if end+1 < len(stmt) && stmt[end+1] == ch {
						end += 2
						continue
					}
					break
				}
				end++
			}
			b.WriteByte(' ')
			i = end
		case ch == '-' && i+1 < len(stmt) && stmt[i+1] == '-':
			end := strings.IndexByte(stmt[i:], '\n')
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += end
		case ch == '/' && i+1 < len(stmt) && stmt[i+1] == '*':
			end := strings.Index(stmt[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += end + 3
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
