package sqltool

import (
	"encoding/json"
	"strings"

	"meal_planner_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
)

// Scope identifies whose data a statement may touch.
type Scope struct {
	UserID    string
	SessionID string
}

// RewritePlaceholders turns :name placeholders into pgx @name placeholders.
// Casts (::type), string literals and quoted identifiers are left alone.
func RewritePlaceholders(stmt string) string {
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
			if end >= len(stmt) {
				end = len(stmt) - 1
			}
			b.WriteString(stmt[i : end+1])
			i = end
		case ch == ':' && i+1 < len(stmt) && stmt[i+1] == ':':
			b.WriteString("::")
			i++
		case ch == ':' && i+1 < len(stmt) && isIdentStart(stmt[i+1]) && (i == 0 || !isIdentChar(stmt[i-1])):
			b.WriteByte('@')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// BuildArgs decodes params_json and sets user_id and session_id from scope.
// Scope always wins over values in params_json so a statement cannot be
// pointed at another user's rows.
func BuildArgs(paramsJSON string, scope Scope) (pgx.NamedArgs, error) {
	args := pgx.NamedArgs{}

	if trimmed := strings.TrimSpace(paramsJSON); trimmed != "" {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, apperr.Validation("params_json is not valid JSON: " + err.Error())
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, apperr.Validation("params_json must be a JSON object")
		}
		for key, value := range obj {
			args[key] = value
		}
	}

	args["user_id"] = scope.UserID
	args["session_id"] = scope.SessionID
	return args, nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
