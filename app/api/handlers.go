package api

import (
	"cmp"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rssforge/rssforge/app/database"
	"github.com/rssforge/rssforge/app/feed"
)

func NewHandler(configCache *feed.ConfigCache, processor *feed.Processor,
	aggregator *feed.Aggregator, fingerprintRepo database.FingerprintRepository) *Handler {
	return &Handler{
		configCache:     configCache,
		processor:       processor,
		aggregator:      aggregator,
		fingerprintRepo: fingerprintRepo,
	}
}

func requestedFormat(c *gin.Context) (string, bool) {
	format := cmp.Or(c.Query("format"), feed.FormatRSS)
	_, ok := contentTypes[format]
	return format, ok
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	format, ok := requestedFormat(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown format, expected rss, atom or json"})
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	if feedConfig.IsFolder() {
		c.JSON(http.StatusNotFound, gin.H{"error": "This is a folder, use /folders/" + name})
		return
	}

	result := h.processor.Run(c.Request.Context(), feedConfig, format)
	h.writeResult(c, format, result)
}

func (h *Handler) GetFolder(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	format, ok := requestedFormat(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown format, expected rss, atom or json"})
		return
	}

	folderConfig, err := h.configCache.GetConfig(name)
	if err != nil || !folderConfig.IsFolder() {
		slog.Error("Folder configuration not found", "folder", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	sources := make([]*feed.Config, 0, len(folderConfig.Sources))
	for _, sourceName := range folderConfig.Sources {
		sourceConfig, err := h.configCache.GetConfig(sourceName)
		if err != nil {
			slog.Warn("Folder references unknown source", "folder", name, "source", sourceName)
			continue
		}
		sources = append(sources, sourceConfig)
	}

	items := h.aggregator.Run(c.Request.Context(), folderConfig, sources)

	data, err := h.processor.Serialize(items, folderConfig, format)
	if err != nil {
		slog.Error("Folder serialization error", "folder", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", contentTypes[format])
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.String(http.StatusOK, data)
}

func (h *Handler) writeResult(c *gin.Context, format string, result feed.Result) {
	c.Header("Content-Type", contentTypes[format])
	c.Header("X-Feed-Items", strconv.Itoa(len(result.Items)))
	if result.IsError {
		// The single structured signal for a fronting cache to pick a
		// short error lifetime.
		c.Header("X-Feed-Error", "true")
	}
	c.String(http.StatusOK, result.Data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.fingerprintRepo.GetFingerprintCount(); err == nil {
		health["fingerprints"] = count
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":             feedConfig.Name,
			"url":              feedConfig.URL,
			"mode":             string(feedConfig.Mode),
			"enabled":          feedConfig.Settings.Enabled,
			"folder":           feedConfig.IsFolder(),
			"max_items":        feedConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(feedConfig.Settings.RefreshInterval) * time.Second).String(),
			"filters":          len(feedConfig.Filters),
		}

		if fp, err := h.fingerprintRepo.GetFingerprint(feedConfig.Name); err == nil && fp != nil {
			feedInfo["last_refreshed_at"] = fp.LastRefreshedAt
			feedInfo["last_item_title"] = fp.Title
			feedInfo["item_count"] = fp.ItemCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APIPreviewFeed extracts on demand and returns the raw item list as
// JSON for preview and diffing, without serializing a feed document.
func (h *Handler) APIPreviewFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	items, err := h.processor.ExtractItems(c.Request.Context(), feedConfig)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"items":    []feed.Item{},
			"is_error": true,
			"message":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"is_error": false,
		"total":    len(items),
	})
}

// APIReloadFeed re-reads a single configuration file from disk.
func (h *Handler) APIReloadFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"feed": gin.H{
			"name":    name,
			"url":     feedConfig.URL,
			"enabled": feedConfig.Settings.Enabled,
		},
	})
}
