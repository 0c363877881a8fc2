package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tradingcoach/internal/model"
)

const (
	profileKey = "tradingcoach_profile"
	chatKey    = "tradingcoach_chat"
	historyKey = "tradingcoach_history"

	// MaxHistoryEntries bounds the stored history; older entries are dropped.
	MaxHistoryEntries = 50
)

// ClientStorage keeps the per-client records the web app used to hold in
// browser local storage: one profile, one chat transcript and the analysis
// history, newest entry first.
type ClientStorage struct {
	store KeyValueStore

	// serializes read-modify-write sequences within this process
	mu sync.Mutex
}

func NewClientStorage(store KeyValueStore) *ClientStorage {
	return &ClientStorage{store: store}
}

func (s *ClientStorage) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func storageKey(clientID, name string) string {
	return clientID + ":" + name
}

func (s *ClientStorage) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *ClientStorage) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *ClientStorage) remove(ctx context.Context, key string) error {
	if err := s.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// GetProfile returns ErrNotFound when the client has not saved a profile.
func (s *ClientStorage) GetProfile(ctx context.Context, clientID string) (*model.TraderProfile, error) {
	var p model.TraderProfile
	ok, err := s.load(ctx, storageKey(clientID, profileKey), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *ClientStorage) SaveProfile(ctx context.Context, clientID string, p model.TraderProfile) error {
	return s.save(ctx, storageKey(clientID, profileKey), p)
}

func (s *ClientStorage) RemoveProfile(ctx context.Context, clientID string) error {
	return s.remove(ctx, storageKey(clientID, profileKey))
}

func (s *ClientStorage) GetChat(ctx context.Context, clientID string) ([]model.ChatMessage, error) {
	messages := []model.ChatMessage{}
	if _, err := s.load(ctx, storageKey(clientID, chatKey), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *ClientStorage) AppendChat(ctx context.Context, clientID string, msgs ...model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.GetChat(ctx, clientID)
	if err != nil {
		return err
	}
	return s.save(ctx, storageKey(clientID, chatKey), append(messages, msgs...))
}

func (s *ClientStorage) ClearChat(ctx context.Context, clientID string) error {
	return s.remove(ctx, storageKey(clientID, chatKey))
}

func (s *ClientStorage) ListEntries(ctx context.Context, clientID string) ([]model.AnalysisEntry, error) {
	entries := []model.AnalysisEntry{}
	if _, err := s.load(ctx, storageKey(clientID, historyKey), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *ClientStorage) GetEntry(ctx context.Context, clientID, id string) (*model.AnalysisEntry, error) {
	entries, err := s.ListEntries(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// AddEntry puts entry at the front of the history. The chart image and
// profile snapshot are kept once on the entry, not on each analysis.
func (s *ClientStorage) AddEntry(ctx context.Context, clientID string, entry model.AnalysisEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.ListEntries(ctx, clientID)
	if err != nil {
		return err
	}

	analyses := make([]model.AnalysisRecord, len(entry.Analyses))
	for i, a := range entry.Analyses {
		a.ChartImage = ""
		a.ProfileSnapshot = nil
		analyses[i] = a
	}
	entry.Analyses = analyses

	entries = append([]model.AnalysisEntry{entry}, entries...)
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}
	return s.save(ctx, storageKey(clientID, historyKey), entries)
}

func (s *ClientStorage) DeleteEntry(ctx context.Context, clientID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.ListEntries(ctx, clientID)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrNotFound
	}
	return s.save(ctx, storageKey(clientID, historyKey), kept)
}

func (s *ClientStorage) ClearHistory(ctx context.Context, clientID string) error {
	return s.remove(ctx, storageKey(clientID, historyKey))
}
