package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const bearerScheme = "BearerAuth"

var pathParamPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// openAPIHandler serves an OpenAPI 3 document generated from the route
// tables.
func openAPIHandler(groups []routeGroup) http.HandlerFunc {
	doc := buildOpenAPI(groups)
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, doc)
	}
}

func buildOpenAPI(groups []routeGroup) map[string]any {
	paths := map[string]map[string]any{}
	for _, group := range groups {
		for _, rt := range group.routes {
			p := openAPIPath(group.prefix, rt.pattern)
			if paths[p] == nil {
				paths[p] = map[string]any{}
			}
			paths[p][strings.ToLower(rt.method)] = openAPIOperation(group.tag, p, rt)
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "minetrack API",
			"version": "1.0.0",
		},
		"paths": paths,
		"components": map[string]any{
			"securitySchemes": map[string]any{
				bearerScheme: map[string]any{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
	}
}

func openAPIOperation(tag, p string, rt route) map[string]any {
	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	op := map[string]any{
		"tags":    []string{tag},
		"summary": rt.summary,
		"responses": map[string]any{
			strconv.Itoa(status): map[string]any{"description": http.StatusText(status)},
		},
	}
	if !rt.public {
		op["security"] = []map[string][]string{{bearerScheme: {}}}
		if len(rt.roles) > 0 {
			op["description"] = "Allowed roles: " + rt.roles.String()
		}
	}

	var params []map[string]any
	for _, m := range pathParamPattern.FindAllStringSubmatch(p, -1) {
		params = append(params, map[string]any{
			"name":     m[1],
			"in":       "path",
			"required": true,
			"schema":   map[string]string{"type": "integer"},
		})
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

func openAPIPath(prefix, pattern string) string {
	if pattern == "/" {
		return prefix
	}
	return prefix + pattern
}
