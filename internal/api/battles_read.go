package api

import (
	"net/http"
	"strconv"

	"github.com/akikan18/shibari-karaoke/internal/constants"
	"github.com/akikan18/shibari-karaoke/internal/dedupe"
	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/logging"
	"github.com/akikan18/shibari-karaoke/internal/storage"

	"github.com/gin-gonic/gin"
)

// ListRoles returns the static role catalog.
func (h *BattleHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, game.Catalog)
}

// ListPublicBattles returns open battles waiting for singers or in progress.
func (h *BattleHandler) ListPublicBattles(c *gin.Context) {
	battles, err := h.repo.ListPublicBattles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(battles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetBattle returns the authoritative battle snapshot. Concurrent polls for
// the same battle are collapsed through a singleflight group.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	code := normalizeJoinCode(c.Param("battleCode"))
	if !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleCode})
		return
	}
	v, err, _ := dedupe.SnapshotGroup.Do(code, func() (interface{}, error) {
		return h.repo.FindBattleByJoinCode(code)
	})
	if err != nil {
		if storage.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		} else {
			logging.Error("failed to load battle", err, logging.Fields{constants.LogFieldCode: code})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		}
		return
	}
	out, err := MarshalIntoSnakeTimestamps(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetBattleLog returns the capped history buffer, oldest first.
func (h *BattleHandler) GetBattleLog(c *gin.Context) {
	code := normalizeJoinCode(c.Param("battleCode"))
	if !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleCode})
		return
	}
	b, err := h.repo.FindBattleByJoinCode(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.repo.GetLogEntries(b.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLog})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLog})
		return
	}
	c.JSON(http.StatusOK, out)
}
