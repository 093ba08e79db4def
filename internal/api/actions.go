package api

import (
	"net/http"

	"github.com/akikan18/shibari-karaoke/internal/constants"
	"github.com/akikan18/shibari-karaoke/internal/deck"
	"github.com/akikan18/shibari-karaoke/internal/game"
	"github.com/akikan18/shibari-karaoke/internal/logging"
	"github.com/akikan18/shibari-karaoke/internal/service"
	"github.com/akikan18/shibari-karaoke/internal/storage"

	"github.com/gin-gonic/gin"
)

// findBattleID resolves the path join code to the internal battle id.
func (h *BattleHandler) findBattleID(c *gin.Context) (uint, bool) {
	code := normalizeJoinCode(c.Param("battleCode"))
	if !joinCodeRegex.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleCode})
		return 0, false
	}
	b, err := h.repo.FindBattleByJoinCode(code)
	if err != nil {
		if storage.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		} else {
			logging.Error("failed to load battle", err, logging.Fields{constants.LogFieldCode: code})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCommit})
		}
		return 0, false
	}
	return b.ID, true
}

// respondTransition renders the common outcome of an optimistic transition:
// the authoritative snapshot plus whether the intent applied. Illegal
// intents are not errors; the client reconciles against the snapshot.
func respondTransition(c *gin.Context, b *game.Battle, applied bool, extra gin.H) {
	out, err := MarshalIntoSnakeTimestamps(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	resp := gin.H{constants.JSONKeyApplied: applied, constants.JSONKeyBattle: out}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

func transitionStatus(c *gin.Context, err error) {
	switch err {
	case service.ErrBattleNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
	case service.ErrConflictRetriesExhausted:
		// surfaced as a transient communication failure, not a game error
		c.JSON(http.StatusServiceUnavailable, gin.H{constants.JSONKeyError: constants.ErrTransientConflict})
	case deck.ErrEmptyPool:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrThemePoolEmpty})
	default:
		logging.Error("transition failed", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCommit})
	}
}

type AbilityRequest struct {
	ActorUUID  string `json:"actor_uuid"`
	Kind       string `json:"kind"`
	TargetUUID string `json:"target_uuid"`
}

// SubmitAbility activates a SKILL or ULT for the current singer.
func (h *BattleHandler) SubmitAbility(c *gin.Context) {
	id, ok := h.findBattleID(c)
	if !ok {
		return
	}
	var req AbilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	kind := game.AbilityKind(req.Kind)
	if kind != game.AbilitySkill && kind != game.AbilityUlt {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, fx, applied, err := service.ActivateAbility(h.repo, id, req.ActorUUID, kind, req.TargetUUID, h.pool, h.actionTimeout)
	if err != nil {
		transitionStatus(c, err)
		return
	}
	extra := gin.H{}
	if fx != nil {
		extra[constants.JSONKeyFx] = fx
	}
	respondTransition(c, b, applied, extra)
}

type ResolveRequest struct {
	CallerUUID string `json:"caller_uuid"`
	Overseer   bool   `json:"overseer"`
	Result     string `json:"result"`
}

// SubmitResult resolves the current singing turn as SUCCESS or FAIL.
func (h *BattleHandler) SubmitResult(c *gin.Context) {
	id, ok := h.findBattleID(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, applied, err := service.ResolveTurn(h.repo, id, req.CallerUUID, req.Overseer, game.TurnResult(req.Result), h.pool, h.actionTimeout)
	if err != nil {
		transitionStatus(c, err)
		return
	}
	respondTransition(c, b, applied, nil)
}

type CandidateRequest struct {
	MemberUUID string         `json:"member_uuid"`
	Card       game.ThemeCard `json:"card"`
}

// PickCandidate resolves a member's pending theme choice.
func (h *BattleHandler) PickCandidate(c *gin.Context) {
	id, ok := h.findBattleID(c)
	if !ok {
		return
	}
	var req CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, applied, err := service.PickCandidate(h.repo, id, req.MemberUUID, req.Card, h.actionTimeout)
	if err != nil {
		transitionStatus(c, err)
		return
	}
	respondTransition(c, b, applied, nil)
}

type OraclePickRequest struct {
	CallerUUID string         `json:"caller_uuid"`
	Overseer   bool           `json:"overseer"`
	TargetUUID string         `json:"target_uuid"`
	Card       game.ThemeCard `json:"card"`
}

// PickOracleTheme completes one step of an active oracle-ult pick.
func (h *BattleHandler) PickOracleTheme(c *gin.Context) {
	id, ok := h.findBattleID(c)
	if !ok {
		return
	}
	var req OraclePickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	b, applied, err := service.PickOracleTheme(h.repo, id, req.CallerUUID, req.Overseer, req.TargetUUID, req.Card, h.actionTimeout)
	if err != nil {
		transitionStatus(c, err)
		return
	}
	respondTransition(c, b, applied, nil)
}
