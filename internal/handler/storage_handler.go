package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tradingcoach/internal/model"
	"tradingcoach/internal/repository"
)

// StorageHandler serves the per-client profile and analysis history.
type StorageHandler struct {
	history  HistoryStore
	profiles ProfileStore
	validate *validator.Validate
}

func NewStorageHandler(history HistoryStore, profiles ProfileStore) *StorageHandler {
	return &StorageHandler{
		history:  history,
		profiles: profiles,
		validate: validator.New(),
	}
}

func (h *StorageHandler) GetHistory(c *gin.Context) {
	entries, err := h.history.ListEntries(c.Request.Context(), clientID(c))
	if err != nil {
		slog.Error("error fetching history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *StorageHandler) GetEntry(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.history.GetEntry(c.Request.Context(), clientID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}
	if err != nil {
		slog.Error("error fetching history entry", "error", err, "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *StorageHandler) DeleteEntry(c *gin.Context) {
	id := c.Param("id")

	err := h.history.DeleteEntry(c.Request.Context(), clientID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}
	if err != nil {
		slog.Error("error deleting history entry", "error", err, "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *StorageHandler) ClearHistory(c *gin.Context) {
	if err := h.history.ClearHistory(c.Request.Context(), clientID(c)); err != nil {
		slog.Error("error clearing history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *StorageHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), clientID(c))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		slog.Error("error fetching profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *StorageHandler) SaveProfile(c *gin.Context) {
	var profile model.TraderProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}

	if err := h.validate.Struct(profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incomplete profile", "details": validationDetails(err)})
		return
	}

	if err := h.profiles.SaveProfile(c.Request.Context(), clientID(c), profile); err != nil {
		slog.Error("error saving profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *StorageHandler) RemoveProfile(c *gin.Context) {
	if err := h.profiles.RemoveProfile(c.Request.Context(), clientID(c)); err != nil {
		slog.Error("error removing profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+" is "+fe.Tag())
	}
	return details
}
