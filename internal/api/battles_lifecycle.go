package api

import (
	"net/http"

	"github.com/akikan18/shibari-karaoke/internal/constants"
	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/logging"
	"github.com/akikan18/shibari-karaoke/internal/service"

	"github.com/gin-gonic/gin"
)

type CreateBattleRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// CreateBattle creates a new battle with a fresh join code.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if len(req.Name) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrBattleNameExceeds})
		return
	}
	b, err := service.CreateBattle(h.repo, req.Name, req.Private, generateJoinCode(), h.pool)
	if err != nil {
		logging.Error("failed to create battle", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateBattle})
		return
	}
	logging.Info("battle created", logging.Fields{constants.LogFieldBattleID: b.ID, constants.LogFieldCode: b.JoinCode})
	out, err := MarshalIntoSnakeTimestamps(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	c.JSON(http.StatusCreated, out)
}

type JoinBattleRequest struct {
	JoinCode string `json:"join_code"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Team     string `json:"team"`
	Role     string `json:"role"`
}

// JoinBattle adds a member (team + role) to a battle by join code.
func (h *BattleHandler) JoinBattle(c *gin.Context) {
	var req JoinBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	code := normalizeJoinCode(req.JoinCode)
	if !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleCode})
		return
	}
	b, memberUUID, err := service.JoinBattle(h.repo, code, req.Name, req.Avatar, game.TeamID(req.Team), game.RoleID(req.Role), h.pool, h.actionTimeout)
	if err != nil {
		switch err {
		case service.ErrBattleNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		case service.ErrNameRequired, service.ErrInvalidTeam, service.ErrUnknownRole:
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		case service.ErrRoleTaken, service.ErrBattleNotJoinable:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
		default:
			logging.Error("failed to join battle", err, logging.Fields{constants.LogFieldCode: code})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCommit})
		}
		return
	}
	logging.Info("member joined", logging.Fields{constants.LogFieldCode: code, constants.LogFieldMember: memberUUID})
	out, err := MarshalIntoSnakeTimestamps(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyBattle: out, constants.JSONKeyMember: memberUUID})
}
