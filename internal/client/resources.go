package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Resource is the admin CRUD surface of one record kind.
type Resource[T any] struct {
	c          *Client
	adminPath  string
	createPath string
	listKey    string
	itemKey    string
}

// List returns one page of records and the total matching the filter.
// query carries the list parameters (limit, offset, status, ...).
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, int64, error) {
	env, err := r.c.do(ctx, http.MethodGet, r.adminPath, query, nil)
	if err != nil {
		return nil, 0, err
	}
	var items []T
	if err := env.decode(r.listKey, &items); err != nil {
		return nil, 0, err
	}
	var total int64
	if _, ok := env["total"]; ok {
		if err := env.decode("total", &total); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Get returns the record with id.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	env, err := r.c.do(ctx, http.MethodGet, r.adminPath+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	var item T
	if err := env.decode(r.itemKey, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create submits a new record and returns it as stored. Kinds whose
// create endpoint answers with only an id are read back with Get.
func (r *Resource[T]) Create(ctx context.Context, input any) (*T, error) {
	env, err := r.c.do(ctx, http.MethodPost, r.createPath, nil, input)
	if err != nil {
		return nil, err
	}
	if _, ok := env[r.itemKey]; ok {
		var item T
		if err := env.decode(r.itemKey, &item); err != nil {
			return nil, err
		}
		return &item, nil
	}
	var id string
	if err := env.decode("id", &id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update applies patch and returns the merged record.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	env, err := r.c.do(ctx, http.MethodPatch, r.adminPath+"/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return nil, err
	}
	var item T
	if err := env.decode(r.itemKey, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.adminPath+"/"+url.PathEscape(id), nil, nil)
	return err
}

// Processable is a Resource whose records move from "new" to "processed".
type Processable[T any] struct {
	Resource[T]
}

// Process marks the record processed. Repeating it is harmless.
func (p *Processable[T]) Process(ctx context.Context, id string) (*T, error) {
	env, err := p.c.do(ctx, http.MethodPost, p.adminPath+"/"+url.PathEscape(id)+"/process", nil, nil)
	if err != nil {
		return nil, err
	}
	var item T
	if err := env.decode(p.itemKey, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListParams builds the common list query.
func ListParams(limit, offset int64) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	return q
}
