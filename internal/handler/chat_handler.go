package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradingcoach/internal/model"
	"tradingcoach/internal/repository"
	"tradingcoach/pkg/llm"
)

type ChatStore interface {
	GetChat(ctx context.Context, clientID string) ([]model.ChatMessage, error)
	AppendChat(ctx context.Context, clientID string, msgs ...model.ChatMessage) error
	ClearChat(ctx context.Context, clientID string) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, clientID string) (*model.TraderProfile, error)
	SaveProfile(ctx context.Context, clientID string, p model.TraderProfile) error
	RemoveProfile(ctx context.Context, clientID string) error
}

// CoachStore is everything the chat endpoint reads and writes.
type CoachStore interface {
	ChatStore
	ProfileStore
	ListEntries(ctx context.Context, clientID string) ([]model.AnalysisEntry, error)
}

type ChatHandler struct {
	coach llm.CoachClient
	store CoachStore
}

// NewChatHandler wires the coach endpoints. store may be nil, in which case
// the coach only sees what the request carries.
func NewChatHandler(coach llm.CoachClient, store CoachStore) *ChatHandler {
	return &ChatHandler{coach: coach, store: store}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid chat request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'message'"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid 'message'"})
		return
	}

	ctx := c.Request.Context()
	client := clientID(c)

	prompt := llm.CoachPrompt(llm.CoachInput{
		Profile:      h.profileText(ctx, client, req.Profile),
		History:      toTurns(req.History),
		PastAnalyses: h.pastAnalyses(ctx, client, req.PastAnalyses),
		Message:      req.Message,
	})

	reply, err := h.coach.Chat(ctx, prompt)
	if err != nil {
		slog.Error("error in coach chat", "coach", h.coach.Name(), "client_id", client, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
		return
	}

	if h.store != nil {
		err := h.store.AppendChat(context.WithoutCancel(ctx), client,
			model.ChatMessage{Role: model.RoleUser, Text: req.Message},
			model.ChatMessage{Role: model.RoleAssistant, Text: reply},
		)
		if err != nil {
			slog.Error("error saving chat transcript", "client_id", client, "error", err)
		}
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func (h *ChatHandler) GetTranscript(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, []model.ChatMessage{})
		return
	}

	messages, err := h.store.GetChat(c.Request.Context(), clientID(c))
	if err != nil {
		slog.Error("error fetching chat transcript", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) ClearTranscript(c *gin.Context) {
	if h.store != nil {
		if err := h.store.ClearChat(c.Request.Context(), clientID(c)); err != nil {
			slog.Error("error clearing chat transcript", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// profileText renders the request's profile, falling back to the stored one.
func (h *ChatHandler) profileText(ctx context.Context, client string, raw json.RawMessage) string {
	if len(raw) > 0 && string(raw) != "null" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			return buf.String()
		}
		return string(raw)
	}

	if h.store != nil {
		p, err := h.store.GetProfile(ctx, client)
		if err == nil {
			out, _ := json.MarshalIndent(p, "", "  ")
			return string(out)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("error loading stored profile for chat", "client_id", client, "error", err)
		}
	}

	return "Not provided"
}

// pastAnalyses flattens what the request sent, falling back to stored history.
func (h *ChatHandler) pastAnalyses(ctx context.Context, client string, sent []PastAnalysis) []llm.PastAnalysis {
	if len(sent) == 0 && h.store != nil {
		entries, err := h.store.ListEntries(ctx, client)
		if err != nil {
			slog.Warn("error loading stored history for chat", "client_id", client, "error", err)
		}
		sent = fromEntries(entries)
	}

	var out []llm.PastAnalysis
	for _, p := range sent {
		if len(p.Analyses) == 0 {
			out = append(out, llm.PastAnalysis{
				Ticker:         p.Ticker,
				Timeframe:      p.Timeframe,
				Date:           p.Date,
				Recommendation: p.Recommendation,
				Reasoning:      p.Reasoning,
			})
			continue
		}
		for _, a := range p.Analyses {
			out = append(out, llm.PastAnalysis{
				Ticker:         a.Ticker,
				Timeframe:      a.Timeframe,
				Date:           p.Date,
				Recommendation: a.Recommendation,
				Reasoning:      a.Reasoning,
			})
		}
	}
	return out
}

func fromEntries(entries []model.AnalysisEntry) []PastAnalysis {
	out := make([]PastAnalysis, 0, len(entries))
	for _, e := range entries {
		p := PastAnalysis{ID: e.ID, Date: e.Date.Format(time.RFC3339)}
		for _, a := range e.Analyses {
			p.Analyses = append(p.Analyses, PastAnalysisRecord{
				Source:         a.Source,
				Ticker:         a.Ticker,
				Timeframe:      a.Timeframe,
				Recommendation: string(a.Recommendation),
				Reasoning:      a.Reasoning,
			})
		}
		out = append(out, p)
	}
	return out
}

func toTurns(history []model.ChatMessage) []llm.Turn {
	turns := make([]llm.Turn, len(history))
	for i, m := range history {
		turns[i] = llm.Turn{Role: m.Role, Text: m.Text}
	}
	return turns
}
