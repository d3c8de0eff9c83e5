package parser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidAnnotation reports a query file whose annotations cannot be
// understood: SQL with no preceding -- name: line, or an unrecognized kind.
var ErrInvalidAnnotation = errors.New("parser: invalid query annotation")

var nameAnnotationRegex = regexp.MustCompile(`^--\s*name:\s*(\w+)\s*(?::(\w+))?\s*$`)

// ParseQueryFile reads one annotated .sql file.
func ParseQueryFile(path string) (*QueryFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file %s: %w", path, err)
	}

	queries, err := parseQueryContent(string(content), path)
	if err != nil {
		return nil, err
	}

	return &QueryFile{
		Path:    path,
		Queries: queries,
	}, nil
}

// ParseQueryDirectory reads every .sql file directly under dirPath, sorted
// by path for deterministic output.
func ParseQueryDirectory(dirPath string) ([]*QueryFile, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read query directory %s: %w", dirPath, err)
	}

	var files []*QueryFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		qf, err := ParseQueryFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(qf.Queries) > 0 {
			files = append(files, qf)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ParseQueries accepts either a single .sql file or a directory of them.
func ParseQueries(path string) ([]*QueryFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("query path not found: %s", path)
	}

	if info.IsDir() {
		return ParseQueryDirectory(path)
	}

	qf, err := ParseQueryFile(path)
	if err != nil {
		return nil, err
	}
	return []*QueryFile{qf}, nil
}

func parseQueryContent(content string, sourcePath string) ([]Query, error) {
	var queries []Query
	var current *Query
	var sqlBuilder strings.Builder
	var commentLines []string
	inComment := false

	flush := func() {
		if current == nil {
			return
		}
		current.SQL = strings.TrimSpace(sqlBuilder.String())
		current.Comment = strings.Join(commentLines, "\n")
		if current.SQL != "" {
			queries = append(queries, *current)
		}
		current = nil
		sqlBuilder.Reset()
		commentLines = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if matches := nameAnnotationRegex.FindStringSubmatch(trimmed); matches != nil {
			flush()

			kind := Kind(matches[2])
			switch kind {
			case "", KindOne, KindMany, KindExec, KindExecRows:
			default:
				return nil, fmt.Errorf("%w: %s:%d: unknown kind %q", ErrInvalidAnnotation, sourcePath, lineNum, matches[2])
			}

			current = &Query{
				Name:       matches[1],
				Kind:       kind,
				SourceFile: sourcePath,
				LineNumber: lineNum,
			}
			inComment = true
			continue
		}

		// A run of -- lines directly under the name line is the doc comment.
		if inComment && strings.HasPrefix(trimmed, "--") {
			commentLines = append(commentLines, strings.TrimSpace(strings.TrimPrefix(trimmed, "--")))
			continue
		}
		inComment = false

		if current == nil {
			// File headers and stray comments before the first query are fine.
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			return nil, fmt.Errorf("%w: %s:%d: SQL before any -- name: line", ErrInvalidAnnotation, sourcePath, lineNum)
		}

		if sqlBuilder.Len() > 0 {
			sqlBuilder.WriteString("\n")
		}
		sqlBuilder.WriteString(line)
	}

	flush()
	return queries, nil
}

// AllQueries flattens the parsed files into one slice.
func AllQueries(files []*QueryFile) []Query {
	var all []Query
	for _, f := range files {
		all = append(all, f.Queries...)
	}
	return all
}
