package contract

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed bfhl.openapi.json
var embedded []byte

// Contract is the request side of the /bfhl operation as described by an
// OpenAPI 3 document.
type Contract struct {
	path   string
	schema *openapi3.Schema
}

// Load parses the built-in contract.
func Load(ctx context.Context) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(embedded)
	if err != nil {
		return nil, err
	}
	return fromDoc(ctx, doc)
}

// LoadFile parses a contract document from disk (json or yaml).
func LoadFile(ctx context.Context, file string) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(file)
	if err != nil {
		return nil, err
	}
	return fromDoc(ctx, doc)
}

func fromDoc(ctx context.Context, doc *openapi3.T) (*Contract, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("contract has no paths")
	}

	// First POST operation wins; the documents we ship only carry one.
	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := doc.Paths.Value(p)
		if item == nil || item.Post == nil {
			continue
		}
		schema := requestSchema(item.Post)
		if schema == nil {
			return nil, fmt.Errorf("POST %s: no application/json request schema", p)
		}
		return &Contract{path: p, schema: schema}, nil
	}
	return nil, fmt.Errorf("contract has no POST operation")
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

func (c *Contract) Path() string { return c.path }

// Endpoint resolves the URL to POST to. A bare base URL (no path, or "/")
// gets the operation path appended; a URL that already names a path is used
// as given.
func (c *Contract) Endpoint(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", err
	}
	if strings.Trim(u.Path, "/") != "" {
		return u.String(), nil
	}
	u.Path = c.path
	u.RawPath = ""
	return u.String(), nil
}

// Required lists the property names the request body must carry.
func (c *Contract) Required() []string {
	return append([]string(nil), c.schema.Required...)
}

// ValidateRequest checks a decoded JSON value (as produced by
// encoding/json into an any) against the request body schema.
func (c *Contract) ValidateRequest(v any) error {
	if err := c.schema.VisitJSON(v, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("request body: %s", strings.TrimSpace(err.Error()))
	}
	return nil
}
