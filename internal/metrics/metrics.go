// Package metrics 汇总各组件的 Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsbrief"

var (
	// FeedFetches 按数据源统计抓取结果，status: ok / error
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_fetches_total",
		Help:      "Feed fetch attempts by source and outcome.",
	}, []string{"source", "status"})

	// Annotations 按执行路径统计标注次数，path: service / mock
	Annotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "annotations_total",
		Help:      "Annotation cycles by execution path.",
	}, []string{"path"})

	// AnnotationFallbacks service 路径失败后回落到 mock 的次数
	AnnotationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "annotation_fallbacks_total",
		Help:      "Service annotation failures recovered by the mock path.",
	})

	// CacheLookups result: hit / miss / error
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Aggregate cache lookups by result.",
	}, []string{"result"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of one fetch+annotate cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	})

	// ChatReplies path: service / mock, status: ok / error
	ChatReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_replies_total",
		Help:      "Chat replies by execution path and outcome.",
	}, []string{"path", "status"})
)
