// Package main checks that a revised OpenAPI document keeps every route the
// feed clients depend on.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"feedsite/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// clientRoutes are called by the web client and must never disappear.
var clientRoutes = []string{
	"GET /Content",
	"POST /Content",
	"POST /User/Register",
	"POST /User/Authorize",
	"GET /SecretQuestions",
	"POST /Images",
	"GET /Images/{name}",
}

type operation struct {
	Responses map[string]struct{}
}

type apiDoc struct {
	Paths map[string]map[string]operation
}

func main() {
	basePath := flag.String("base", "", "base swagger document (defaults to the document compiled into the server)")
	revisionPath := flag.String("revision", "", "revised swagger document (yaml or json)")
	flag.Parse()

	if strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -revision <path> [-base <path>]")
		os.Exit(2)
	}

	var base apiDoc
	var err error
	if strings.TrimSpace(*basePath) == "" {
		base, err = parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		base, err = loadDoc(*basePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}
	revision, err := loadDoc(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	issues := append(compare(base, revision), missingClientRoutes(revision)...)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("api compatibility check passed")
}

func loadDoc(path string) (apiDoc, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiDoc{}, err
	}
	return parseDoc(raw)
}

// parseDoc accepts YAML or JSON; JSON documents are valid YAML.
func parseDoc(raw []byte) (apiDoc, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiDoc{}, err
	}
	if doc.Paths == nil {
		return apiDoc{}, errors.New("missing top-level paths field")
	}

	out := apiDoc{Paths: make(map[string]map[string]operation, len(doc.Paths))}
	for path, methods := range doc.Paths {
		ops := make(map[string]operation)
		for method, node := range methods {
			m := strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[m]; !ok {
				continue
			}
			var body struct {
				Responses map[string]yaml.Node `yaml:"responses"`
			}
			if err := node.Decode(&body); err != nil {
				return apiDoc{}, fmt.Errorf("%s %s: %w", strings.ToUpper(m), path, err)
			}
			codes := make(map[string]struct{}, len(body.Responses))
			for code := range body.Responses {
				if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
					codes[c] = struct{}{}
				}
			}
			ops[m] = operation{Responses: codes}
		}
		if len(ops) > 0 {
			out.Paths[path] = ops
		}
	}
	return out, nil
}

func compare(base, revision apiDoc) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func missingClientRoutes(revision apiDoc) []string {
	var issues []string
	for _, route := range clientRoutes {
		method, path, _ := strings.Cut(route, " ")
		if _, ok := revision.Paths[path][strings.ToLower(method)]; !ok {
			issues = append(issues, "missing client route: "+route)
		}
	}
	return issues
}
