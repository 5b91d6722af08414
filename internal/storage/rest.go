package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/math-u-t/litedrive/internal/config"
)

const maxErrorBody = 4 << 10

// restStorage talks to an object storage REST API of the form
// {baseURL}/object/{bucket}/{key} authenticated with a service credential.
// It is safe for concurrent use by multiple goroutines.
type restStorage struct {
	client     *http.Client
	baseURL    string
	bucket     string
	serviceKey string
}

// NewREST creates a Storage backed by the REST object API described by cfg.
func NewREST(cfg config.ObjectStoreConfig) (Storage, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("object store base url is required")
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("object store service key is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("object store bucket is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("object store base url: %w", err)
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	if cfg.HTTPTimeoutSec > 0 {
		client.Timeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
	}

	return &restStorage{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		serviceKey: cfg.ServiceKey,
	}, nil
}

// escapeKey path-escapes each segment of key and keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *restStorage) objectURL(key string) string {
	return s.baseURL + "/object/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

func (s *restStorage) PublicURL(key string) string {
	return s.baseURL + "/object/public/" + url.PathEscape(s.bucket) + "/" + escapeKey(key)
}

// Put creates the object with x-upsert disabled so an existing key is rejected.
func (s *restStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), r)
	if err != nil {
		return ObjectInfo{}, err
	}
	if opt.Size >= 0 {
		req.ContentLength = opt.Size
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", opt.ContentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError("put", resp)
		if resp.StatusCode == http.StatusConflict || strings.Contains(serr.Body, `"409"`) {
			return ObjectInfo{}, fmt.Errorf("%w: %w", ErrObjectExists, serr)
		}
		return ObjectInfo{}, serr
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return ObjectInfo{
		Key:         key,
		Size:        opt.Size,
		ETag:        resp.Header.Get("ETag"),
		ContentType: opt.ContentType,
	}, nil
}

// Delete removes the object. A 404 from the store counts as already deleted.
func (s *restStorage) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("delete", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(op string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
