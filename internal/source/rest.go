package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/leapstack-labs/leapviz/pkg/value"
)

// maxResponseBytes caps how much of a REST response is read.
const maxResponseBytes = 64 << 20

// RESTClient fetches JSON records from HTTP endpoints.
type RESTClient struct {
	HTTP *http.Client
}

// NewRESTClient returns a client using http.DefaultClient when hc is nil.
func NewRESTClient(hc *http.Client) *RESTClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &RESTClient{HTTP: hc}
}

func (c *RESTClient) newRequest(ctx context.Context, opts core.RestImportOptions) (*http.Request, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, core.InvalidArgumentf("invalid REST URL %q", opts.URL)
	}
	if len(opts.QueryParameters) > 0 {
		q := u.Query()
		for k, v := range opts.QueryParameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.RequestBody != "" {
		body = strings.NewReader(opts.RequestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidArgument, err, "failed to build REST request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Fetch calls the endpoint and converts the records found at DataPath.
func (c *RESTClient) Fetch(ctx context.Context, opts core.RestImportOptions, sampleSize int) (*Table, error) {
	if opts.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	req, err := c.newRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, core.Wrap(core.KindOperationFailed, err, "REST request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.OperationFailedf("REST API returned status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, core.Wrap(core.KindOperationFailed, err, "failed to read REST response")
	}

	return ParseJSONRecords(payload, opts.DataPath, opts.MaxRecords, opts.FlattenNestedObjects, sampleSize)
}

// ParseJSONRecords extracts records from a JSON document. dataPath is a
// dot-separated path of object keys and array indexes; empty means the root.
// An object at the path is one record. maxRecords <= 0 means no limit.
func ParseJSONRecords(payload []byte, dataPath string, maxRecords int, flatten bool, sampleSize int) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, core.Wrap(core.KindInvalidArgument, err, "response is not valid JSON")
	}

	node, err := walkPath(doc, dataPath)
	if err != nil {
		return nil, err
	}

	var items []any
	switch v := node.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, core.InvalidArgumentf("data at %q is not an array or object", dataPath)
	}
	if maxRecords > 0 && len(items) > maxRecords {
		items = items[:maxRecords]
	}

	var (
		names   []string
		seen    = map[string]bool{}
		objects = make([]map[string]any, len(items))
	)
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			obj = map[string]any{"value": item}
		}
		flat := make(map[string]any)
		flattenInto(flat, "", obj, flatten)
		objects[i] = flat

		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		// JSON object key order is not preserved by map decoding.
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	records := make([][]string, len(objects))
	for i, obj := range objects {
		rec := make([]string, len(names))
		for j, name := range names {
			rec[j] = value.TextOr(obj[name], "")
		}
		records[i] = rec
	}
	return BuildTable(names, records, sampleSize)
}

func walkPath(doc any, dataPath string) (any, error) {
	if strings.TrimSpace(dataPath) == "" {
		return doc, nil
	}
	node := doc
	for _, seg := range strings.Split(dataPath, ".") {
		switch v := node.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, core.InvalidArgumentf("data path %q not found in response", dataPath)
			}
			node = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, core.InvalidArgumentf("data path %q not found in response", dataPath)
			}
			node = v[i]
		default:
			return nil, core.InvalidArgumentf("data path %q not found in response", dataPath)
		}
	}
	return node, nil
}

// flattenInto copies obj into dst. Nested objects become prefix.key entries
// when flatten is set; otherwise they, like arrays, are kept as JSON text.
func flattenInto(dst map[string]any, prefix string, obj map[string]any, flatten bool) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			if flatten {
				flattenInto(dst, key, nested, flatten)
				continue
			}
			dst[key] = jsonText(nested)
		case []any:
			dst[key] = jsonText(nested)
		default:
			dst[key] = v
		}
	}
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
