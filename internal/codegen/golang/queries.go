package golang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgbind/pgbind/internal/introspect"
	"github.com/pgbind/pgbind/internal/parser"
)

func queryFile(q *introspect.TypedQuery, pkg string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("package %s\n\n", pkg))

	if imports := collectImports(q); len(imports) > 0 {
		sb.WriteString("import (\n")
		for _, imp := range imports {
			sb.WriteString(fmt.Sprintf("\t%q\n", imp))
		}
		sb.WriteString(")\n\n")
	}

	returnsRows := q.Kind == parser.KindOne || q.Kind == parser.KindMany
	if returnsRows {
		sb.WriteString(resultStruct(q))
		sb.WriteString("\n")
	}

	sb.WriteString(queryConstant(q))
	sb.WriteString("\n")

	sb.WriteString(queryFunction(q))

	return sb.String()
}

func collectImports(q *introspect.TypedQuery) []string {
	importSet := map[string]bool{"context": true}

	if q.Kind == parser.KindOne || q.Kind == parser.KindMany {
		for _, col := range q.Columns {
			if _, imp := goType(col.Type, col.Nullable); imp != "" {
				importSet[imp] = true
			}
		}
	}
	for _, p := range q.Params {
		if _, imp := goType(p.Type, false); imp != "" {
			importSet[imp] = true
		}
	}

	imports := make([]string, 0, len(importSet))
	for imp := range importSet {
		imports = append(imports, imp)
	}
	sort.Strings(imports)
	return imports
}

func resultStruct(q *introspect.TypedQuery) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("type %sRow struct {\n", q.Name))
	for _, col := range q.Columns {
		fieldType, _ := goType(col.Type, col.Nullable)
		jsonTag := col.Name
		if col.Nullable {
			jsonTag += ",omitempty"
		}
		sb.WriteString(fmt.Sprintf("\t%s %s `json:%q`\n", toPascalCase(col.Name), fieldType, jsonTag))
	}
	sb.WriteString("}\n")

	return sb.String()
}

// queryConstant renders the SQL the binding executes. Alias hints are
// quoted here too: the recorded SQL keeps the user's bare `alias!` form, but
// an unquoted hint would not parse at runtime.
func queryConstant(q *introspect.TypedQuery) string {
	return fmt.Sprintf("const %sSQL = `\n%s`\n", toSnakeCaseLower(q.Name), parser.QuoteAliasHints(q.SQL))
}

func queryFunction(q *introspect.TypedQuery) string {
	var sb strings.Builder

	constName := toSnakeCaseLower(q.Name) + "SQL"
	structName := q.Name + "Row"

	params := []string{"ctx context.Context"}
	args := make([]string, len(q.Params))
	for i, p := range q.Params {
		paramType, _ := goType(p.Type, false)
		params = append(params, fmt.Sprintf("%s %s", p.Name, paramType))
		args[i] = p.Name
	}
	argsStr := strings.Join(args, ", ")

	var returnType string
	switch q.Kind {
	case parser.KindOne:
		returnType = fmt.Sprintf("(*%s, error)", structName)
	case parser.KindMany:
		returnType = fmt.Sprintf("([]%s, error)", structName)
	case parser.KindExec:
		returnType = "error"
	case parser.KindExecRows:
		returnType = "(int64, error)"
	}

	if q.Comment != "" {
		for _, line := range strings.Split(q.Comment, "\n") {
			sb.WriteString("// " + line + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("func (q *Queries) %s(%s) %s {\n", q.Name, strings.Join(params, ", "), returnType))

	switch q.Kind {
	case parser.KindOne:
		sb.WriteString(generateRowQuery(q, constName, structName, argsStr))
	case parser.KindMany:
		sb.WriteString(generateRowsQuery(q, constName, structName, argsStr))
	case parser.KindExec:
		sb.WriteString(generateExecQuery(constName, argsStr))
	case parser.KindExecRows:
		sb.WriteString(generateExecRowsQuery(constName, argsStr))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func generateRowQuery(q *introspect.TypedQuery, constName, structName, argsStr string) string {
	var sb strings.Builder

	if argsStr != "" {
		sb.WriteString(fmt.Sprintf("\trow := q.db.QueryRow(ctx, %s, %s)\n\n", constName, argsStr))
	} else {
		sb.WriteString(fmt.Sprintf("\trow := q.db.QueryRow(ctx, %s)\n\n", constName))
	}

	sb.WriteString(fmt.Sprintf("\tvar result %s\n", structName))
	sb.WriteString(fmt.Sprintf("\terr := row.Scan(%s)\n", scanArgs(q, "result")))
	sb.WriteString("\tif err != nil {\n")
	sb.WriteString("\t\treturn nil, err\n")
	sb.WriteString("\t}\n")
	sb.WriteString("\n\treturn &result, nil\n")

	return sb.String()
}

func generateRowsQuery(q *introspect.TypedQuery, constName, structName, argsStr string) string {
	var sb strings.Builder

	if argsStr != "" {
		sb.WriteString(fmt.Sprintf("\trows, err := q.db.Query(ctx, %s, %s)\n", constName, argsStr))
	} else {
		sb.WriteString(fmt.Sprintf("\trows, err := q.db.Query(ctx, %s)\n", constName))
	}
	sb.WriteString("\tif err != nil {\n")
	sb.WriteString("\t\treturn nil, err\n")
	sb.WriteString("\t}\n")
	sb.WriteString("\tdefer rows.Close()\n\n")

	sb.WriteString(fmt.Sprintf("\tvar result []%s\n", structName))
	sb.WriteString("\tfor rows.Next() {\n")
	sb.WriteString(fmt.Sprintf("\t\tvar item %s\n", structName))
	sb.WriteString(fmt.Sprintf("\t\terr := rows.Scan(%s)\n", scanArgs(q, "item")))
	sb.WriteString("\t\tif err != nil {\n")
	sb.WriteString("\t\t\treturn nil, err\n")
	sb.WriteString("\t\t}\n")
	sb.WriteString("\t\tresult = append(result, item)\n")
	sb.WriteString("\t}\n\n")

	sb.WriteString("\tif err := rows.Err(); err != nil {\n")
	sb.WriteString("\t\treturn nil, err\n")
	sb.WriteString("\t}\n\n")

	sb.WriteString("\treturn result, nil\n")
	return sb.String()
}

func generateExecQuery(constName, argsStr string) string {
	var sb strings.Builder

	if argsStr != "" {
		sb.WriteString(fmt.Sprintf("\t_, err := q.db.Exec(ctx, %s, %s)\n", constName, argsStr))
	} else {
		sb.WriteString(fmt.Sprintf("\t_, err := q.db.Exec(ctx, %s)\n", constName))
	}
	sb.WriteString("\treturn err\n")

	return sb.String()
}

func generateExecRowsQuery(constName, argsStr string) string {
	var sb strings.Builder

	if argsStr != "" {
		sb.WriteString(fmt.Sprintf("\tresult, err := q.db.Exec(ctx, %s, %s)\n", constName, argsStr))
	} else {
		sb.WriteString(fmt.Sprintf("\tresult, err := q.db.Exec(ctx, %s)\n", constName))
	}
	sb.WriteString("\tif err != nil {\n")
	sb.WriteString("\t\treturn 0, err\n")
	sb.WriteString("\t}\n")
	sb.WriteString("\treturn result.RowsAffected(), nil\n")

	return sb.String()
}

func scanArgs(q *introspect.TypedQuery, receiver string) string {
	args := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		args[i] = "&" + receiver + "." + toPascalCase(col.Name)
	}
	return strings.Join(args, ", ")
}
