package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a charmbracelet logger at debug level.
// It implements all hook interfaces; register it with the Set functions.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to log.Default() if nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnValidateStart(_ context.Context, nodeCount int) {
	h.logger.Debug("validate start", "nodes", nodeCount)
}

func (h *LogHooks) OnValidateComplete(_ context.Context, diagnostics int, cached bool, d time.Duration) {
	h.logger.Debug("validate done", "diagnostics", diagnostics, "cached", cached, "took", d)
}

func (h *LogHooks) OnBuildStart(_ context.Context, nodeCount int) {
	h.logger.Debug("build start", "nodes", nodeCount)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodeCount, linkCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "err", err, "took", d)
		return
	}
	h.logger.Debug("build done", "nodes", nodeCount, "links", linkCount, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
