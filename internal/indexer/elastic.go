package indexer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
)

const defaultTimeout = 30 * time.Second

// ElasticWriter is a BulkWriter backed by the Elasticsearch bulk API.
type ElasticWriter struct {
	client  *elasticsearch.Client
	refresh bool
	timeout time.Duration
}

// ElasticOption configures an ElasticWriter.
type ElasticOption func(*elasticsearch.Config)

// WithTransport replaces the HTTP transport, e.g. with a mock in tests.
func WithTransport(rt http.RoundTripper) ElasticOption {
	return func(c *elasticsearch.Config) { c.Transport = rt }
}

// NewElasticWriter builds a writer from the elasticsearch settings. The
// api_key is used when use_api_key is set, basic auth otherwise.
func NewElasticWriter(settings *conf.ElasticsearchSettings, opts ...ElasticOption) (*ElasticWriter, error) {
	if settings.Endpoint == "" {
		return nil, errors.Newf("elasticsearch endpoint is not configured").
			Component("indexer").
			Category(errors.CategoryConfiguration).
			Build()
	}

	cfg := elasticsearch.Config{Addresses: []string{settings.Endpoint}}
	if settings.UseAPIKey {
		cfg.APIKey = settings.APIKey
	} else {
		cfg.Username = settings.Username
		cfg.Password = settings.Password
	}
	if !settings.VerifySSL {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via verify_ssl: false
		cfg.Transport = transport
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, errors.New(err).
			Component("indexer").
			Category(errors.CategoryConfiguration).
			Context("endpoint", settings.Endpoint).
			Build()
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ElasticWriter{client: client, refresh: settings.Refresh, timeout: timeout}, nil
}

// CheckConnection calls the info endpoint.
func (w *ElasticWriter) CheckConnection(ctx context.Context) (ClusterInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := w.client.Info(w.client.Info.WithContext(ctx))
	if err != nil {
		return ClusterInfo{}, connectionError(err)
	}
	defer drain(res)
	if res.IsError() {
		return ClusterInfo{}, connectionError(fmt.Errorf("info request failed: %s", res.Status()))
	}

	var body struct {
		Name        string `json:"name"`
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ClusterInfo{}, connectionError(err)
	}
	return ClusterInfo{Name: body.Name, ClusterName: body.ClusterName, Version: body.Version.Number}, nil
}

func connectionError(err error) error {
	return errors.New(err).
		Component("indexer").
		Category(errors.CategoryNetwork).
		Context("operation", "check_connection").
		Build()
}

// bulkResponse mirrors the parts of the bulk response we read.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string     `json:"_id"`
		Status int        `json:"status"`
		Error  *ItemError `json:"error"`
	} `json:"items"`
}

// Bulk sends docs as create operations against index.
func (w *ElasticWriter) Bulk(ctx context.Context, index string, docs [][]byte) ([]ItemResult, error) {
	body := encodeCreates(index, docs)

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := w.client.Bulk(bytes.NewReader(body),
		w.client.Bulk.WithContext(ctx),
		w.client.Bulk.WithRefresh(strconv.FormatBool(w.refresh)),
	)
	if err != nil {
		return nil, err
	}
	defer drain(res)
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("bulk request failed: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	results := make([]ItemResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		for _, op := range item {
			results = append(results, ItemResult{ID: op.ID, Status: op.Status, Error: op.Error})
		}
	}
	if len(results) != len(docs) {
		GetLogger().Warn("bulk response item count mismatch",
			logger.String("index", index),
			logger.Int("submitted", len(docs)),
			logger.Int("returned", len(results)))
	}
	return results, nil
}

// encodeCreates renders the NDJSON body: an action line then the source line
// for each document.
func encodeCreates(index string, docs [][]byte) []byte {
	action, _ := json.Marshal(map[string]map[string]string{"create": {"_index": index}})
	var buf bytes.Buffer
	for _, doc := range docs {
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(bytes.TrimRight(doc, "\n"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func drain(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
