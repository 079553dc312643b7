package mining

import (
	miningcore "cloudmine-backend/internal/mining"
	"cloudmine-backend/internal/models"
	"cloudmine-backend/internal/services"
	"cloudmine-backend/internal/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) (models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return user.(models.User), true
}

// ListCoins returns the coin catalog with the rates adjusted for the
// requesting user's package tier.
func ListCoins(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	multipliers := miningcore.PackageMultipliers(u.ActivePackage)
	coins := make([]CoinResponse, 0, len(miningcore.Coins))
	for _, coin := range miningcore.Coins {
		coins = append(coins, CoinResponse{
			ID:                coin.ID,
			Name:              coin.Name,
			Symbol:            coin.Symbol,
			BaseHashRate:      coin.BaseHashRate,
			BaseEarning:       coin.BaseEarning,
			EffectiveHashRate: miningcore.EffectiveHashRate(coin.BaseHashRate, u.ActivePackage),
			EarningMultiplier: multipliers.Earning,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Coins retrieved successfully", coins))
}

// ListPackages returns the static package catalog.
func ListPackages(c *gin.Context) {
	type packageResponse struct {
		miningcore.Package
		Multipliers miningcore.Multipliers `json:"multipliers"`
	}

	packages := make([]packageResponse, 0, len(miningcore.Packages))
	for _, p := range miningcore.Packages {
		packages = append(packages, packageResponse{
			Package:     p,
			Multipliers: miningcore.PackageMultipliers(p.ID),
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Packages retrieved successfully", packages))
}

// StartMining opens a new session for the user. Any previously active
// session is terminated first so at most one session runs per user.
func StartMining(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var input StartMiningInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	session, err := services.StartMining(u.ID, input.CoinID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCoinNotFound):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		case errors.Is(err, services.ErrMiningNotAllowed):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
		case errors.Is(err, services.ErrStartCooldown):
			c.JSON(http.StatusTooManyRequests, utils.NewErrorResponse(http.StatusTooManyRequests, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to start mining session"))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Mining session started", NewSessionResponse(*session)))
}

// StopMining closes the given session. Stopping an already stopped
// session succeeds without changes.
func StopMining(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var input StopMiningInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	err := services.StopMining(u.ID, input.SessionID, "")
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to stop mining session"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Mining session stopped", nil))
}

// ActiveSessions lists the user's currently running sessions.
func ActiveSessions(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := services.ActiveSessions(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve sessions"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Active sessions retrieved successfully", NewSessionResponses(sessions)))
}

// SessionHistory lists the user's most recent sessions, newest first.
func SessionHistory(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	sessions, err := services.SessionHistory(u.ID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to retrieve session history"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Session history retrieved successfully", NewSessionResponses(sessions)))
}
