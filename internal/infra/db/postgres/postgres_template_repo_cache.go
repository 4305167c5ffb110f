package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/repository"
	"ai-debate-orchestrator/internal/infra/metrics"
	red "ai-debate-orchestrator/internal/infra/redis"
)

var _ repository.TemplateStore = (*templateRepoCacheDecorator)(nil)

type templateRepoCacheDecorator struct {
	inner repository.TemplateStore
	cache red.RedisClient
	ttl   time.Duration
}

func NewTemplateRepoCacheDecorator(inner repository.TemplateStore, cache red.RedisClient) repository.TemplateStore {
	return &templateRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *templateRepoCacheDecorator) FindByID(ctx context.Context, id string) (*model.DebateTemplate, error) {
	key := fmt.Sprintf("template:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var tpl model.DebateTemplate
		if json.Unmarshal([]byte(val), &tpl) == nil {
			metrics.IncCacheRequest("template", "hit")
			return &tpl, nil
		}
	}

	metrics.IncCacheRequest("template", "miss")
	tpl, err := d.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(tpl); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return tpl, nil
}

func (d *templateRepoCacheDecorator) ListAll(ctx context.Context) ([]*model.DebateTemplate, error) {
	key := "templates:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var tpls []*model.DebateTemplate
		if json.Unmarshal([]byte(val), &tpls) == nil {
			metrics.IncCacheRequest("template_list", "hit")
			return tpls, nil
		}
	}

	metrics.IncCacheRequest("template_list", "miss")
	tpls, err := d.inner.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(tpls) > 0 {
		if bytes, err := json.Marshal(tpls); err == nil {
			d.cache.Set(ctx, key, bytes, d.ttl)
		}
	}
	return tpls, nil
}

// Writes invalidate both the single entry and the list key.
func (d *templateRepoCacheDecorator) Save(ctx context.Context, tpl *model.DebateTemplate) error {
	d.cache.Del(ctx, fmt.Sprintf("template:%s", tpl.ID), "templates:all")
	return d.inner.Save(ctx, tpl)
}

func (d *templateRepoCacheDecorator) Delete(ctx context.Context, id string) error {
	d.cache.Del(ctx, fmt.Sprintf("template:%s", id), "templates:all")
	return d.inner.Delete(ctx, id)
}
