package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// maxBodySize bounds how much of a response is read
const maxBodySize = 5 << 20

// fetch performs a GET and returns the body of a 200 response
func fetch(ctx context.Context, client *http.Client, source entities.PriceSource, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(source, entities.ReasonUnsupported, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable(source, entities.ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(source, entities.ReasonStatus, fmt.Errorf("GET %s/%s: %s", req.URL.Host, req.URL.Path, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, unavailable(source, entities.ReasonNetwork, err)
	}
	return body, nil
}

// fetchJSON performs a GET and decodes the JSON body generically, keeping numbers exact
func fetchJSON(ctx context.Context, client *http.Client, source entities.PriceSource, url string, header http.Header) (interface{}, error) {
	body, err := fetch(ctx, client, source, url, header)
	if err != nil {
		return nil, err
	}

	var obj interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, unavailable(source, entities.ReasonPayload, err)
	}
	return obj, nil
}

// lookup evaluates a JSON path against obj.
// jsonpath may answer a single value or a list of one, so lists of one are unwrapped.
func lookup(source entities.PriceSource, obj interface{}, path string) (interface{}, error) {
	val, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil, unavailable(source, entities.ReasonPayload, fmt.Errorf("path %q: %w", path, err))
	}
	if list, ok := val.([]interface{}); ok && len(list) == 1 {
		val = list[0]
	}
	return val, nil
}

// toDecimal converts a decoded JSON scalar into a decimal
func toDecimal(source entities.PriceSource, v interface{}) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)

	switch n := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(n.String())
	case string:
		d, err = decimal.NewFromString(n)
	case float64:
		d = decimal.NewFromFloat(n)
	default:
		err = fmt.Errorf("not a number: %v (%T)", v, v)
	}
	if err != nil {
		return decimal.Decimal{}, unavailable(source, entities.ReasonPayload, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, unavailable(source, entities.ReasonPayload, fmt.Errorf("negative price %s", d))
	}
	return d, nil
}
