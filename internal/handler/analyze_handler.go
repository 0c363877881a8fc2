package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradingcoach/internal/analysis"
	"tradingcoach/internal/model"
	"tradingcoach/pkg/llm"
	"tradingcoach/pkg/quote"
)

const (
	EntryIDHeader = "X-Analysis-Entry-Id"
	quoteTimeout  = 5 * time.Second
)

var supportedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type HistoryStore interface {
	ListEntries(ctx context.Context, clientID string) ([]model.AnalysisEntry, error)
	GetEntry(ctx context.Context, clientID, id string) (*model.AnalysisEntry, error)
	AddEntry(ctx context.Context, clientID string, entry model.AnalysisEntry) error
	DeleteEntry(ctx context.Context, clientID, id string) error
	ClearHistory(ctx context.Context, clientID string) error
}

type AnalyzeHandler struct {
	dispatcher     *analysis.Dispatcher
	history        HistoryStore
	quoter         quote.Quoter
	maxUploadBytes int64
}

// NewAnalyzeHandler wires the chart endpoints. history and quoter may be nil.
func NewAnalyzeHandler(dispatcher *analysis.Dispatcher, history HistoryStore, quoter quote.Quoter, maxUploadBytes int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		dispatcher:     dispatcher,
		history:        history,
		quoter:         quoter,
		maxUploadBytes: maxUploadBytes,
	}
}

type chartUpload struct {
	input   llm.ChartInput
	profile json.RawMessage
}

type uploadError struct {
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

func (h *AnalyzeHandler) readUpload(c *gin.Context) (*chartUpload, error) {
	// leave room for the profile field and multipart framing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &uploadError{"Image too large"}
		}
		return nil, &uploadError{"No file uploaded"}
	}

	if fileHeader.Size > h.maxUploadBytes {
		return nil, &uploadError{"Image too large"}
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(image) == 0 {
		return nil, &uploadError{"No file uploaded"}
	}

	mtype := mimetype.Detect(image)
	if !mimetype.EqualsAny(mtype.String(), supportedImageTypes...) {
		return nil, &uploadError{"Unsupported image type: " + mtype.String()}
	}

	profile := c.PostForm("profile")
	if profile == "" {
		profile = "{}"
	}
	if !json.Valid([]byte(profile)) {
		return nil, &uploadError{"Invalid profile"}
	}

	return &chartUpload{
		input: llm.ChartInput{
			Image:     image,
			MediaType: mtype.String(),
			Profile:   profile,
		},
		profile: json.RawMessage(profile),
	}, nil
}

func (h *AnalyzeHandler) abortUpload(c *gin.Context, err error) {
	var uerr *uploadError
	if errors.As(err, &uerr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": uerr.message})
		return
	}
	slog.Error("error reading chart upload", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read upload"})
}

// Analyze streams one JSON line per vendor, in the order the vendors answer.
// With ?mode=batch it waits for every vendor and answers with one object.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	upload, err := h.readUpload(c)
	if err != nil {
		h.abortUpload(c, err)
		return
	}

	if c.Query("mode") == "batch" {
		h.analyzeBatch(c, upload)
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	entryID := uuid.NewString()

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	if h.history != nil {
		c.Header(EntryIDHeader, entryID)
	}
	c.Status(http.StatusOK)

	prices := h.newPriceCache()

	// Error lines go out as they arrive; each success is quoted on its own
	// goroutine and written when its lookup finishes.
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []model.AnalysisRecord
	)
	enc := json.NewEncoder(c.Writer)
	write := func(source string, line interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(line); err != nil {
			slog.Warn("error writing analysis stream", "source", source, "error", err)
			return
		}
		c.Writer.Flush()
	}

	for res := range h.dispatcher.Stream(ctx, upload.input) {
		if res.Err != nil {
			write(res.Source, vendorError(res))
			continue
		}

		wg.Add(1)
		go func(res analysis.Result) {
			defer wg.Done()
			record := h.record(ctx, upload, *res.Analysis, now, prices)
			write(res.Source, record)

			mu.Lock()
			records = append(records, record)
			mu.Unlock()
		}(res)
	}
	wg.Wait()

	h.saveEntry(ctx, clientID(c), entryID, now, upload, records)
}

func (h *AnalyzeHandler) analyzeBatch(c *gin.Context, upload *chartUpload) {
	ctx := c.Request.Context()
	now := time.Now().UTC()
	prices := h.newPriceCache()

	res := AnalysesResponse{
		Analyses: []model.AnalysisRecord{},
		Errors:   []model.VendorError{},
	}
	for _, r := range h.dispatcher.Collect(ctx, upload.input) {
		if r.Err != nil {
			res.Errors = append(res.Errors, vendorError(r))
			continue
		}
		res.Analyses = append(res.Analyses, h.record(ctx, upload, *r.Analysis, now, prices))
	}

	entryID := uuid.NewString()
	if h.saveEntry(ctx, clientID(c), entryID, now, upload, res.Analyses) {
		c.Header(EntryIDHeader, entryID)
	}

	c.JSON(http.StatusOK, res)
}

// AnalyzeVendor runs a single vendor named by the :vendor path parameter.
func (h *AnalyzeHandler) AnalyzeVendor(c *gin.Context) {
	vendor, ok := h.dispatcher.Lookup(c.Param("vendor"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown vendor"})
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		h.abortUpload(c, err)
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	res := h.dispatcher.Analyze(ctx, vendor, upload.input)
	if res.Err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Err.Error()})
		return
	}

	record := h.record(ctx, upload, *res.Analysis, now, h.newPriceCache())

	entryID := uuid.NewString()
	if h.saveEntry(ctx, clientID(c), entryID, now, upload, []model.AnalysisRecord{record}) {
		c.Header(EntryIDHeader, entryID)
	}

	c.JSON(http.StatusOK, SingleAnalysisResponse{Analysis: record})
}

func vendorError(r analysis.Result) model.VendorError {
	return model.VendorError{
		Error:  fmt.Sprintf("Error analyzing with %s: %s", r.Source, r.Err.Error()),
		Source: r.Source,
	}
}

func (h *AnalyzeHandler) record(ctx context.Context, upload *chartUpload, a model.ChartAnalysis, now time.Time, prices *priceCache) model.AnalysisRecord {
	a.MarketPrice = prices.lookup(ctx, a.Ticker)
	return model.AnalysisRecord{
		ID:              uuid.NewString(),
		Date:            now,
		ChartImage:      upload.input.DataURL(),
		ProfileSnapshot: upload.profile,
		ChartAnalysis:   a,
	}
}

// priceCache looks up each symbol at most once per request. Lookup failures
// only mean the analysis goes out without a live price.
type priceCache struct {
	quoter quote.Quoter

	mu      sync.Mutex
	symbols map[string]*priceLookup
}

type priceLookup struct {
	once  sync.Once
	price *float64
}

func (h *AnalyzeHandler) newPriceCache() *priceCache {
	return &priceCache{quoter: h.quoter, symbols: map[string]*priceLookup{}}
}

func (p *priceCache) lookup(ctx context.Context, ticker string) *float64 {
	if p.quoter == nil {
		return nil
	}

	symbol := quote.NormalizeTicker(ticker)
	if symbol == "" {
		return nil
	}

	p.mu.Lock()
	l, ok := p.symbols[symbol]
	if !ok {
		l = &priceLookup{}
		p.symbols[symbol] = l
	}
	p.mu.Unlock()

	l.once.Do(func() {
		qctx, cancel := context.WithTimeout(ctx, quoteTimeout)
		defer cancel()

		price, err := p.quoter.Quote(qctx, symbol)
		if err != nil {
			slog.Warn("error fetching quote", "quoter", p.quoter.Name(), "symbol", symbol, "error", err)
			return
		}
		l.price = &price
	})
	return l.price
}

// saveEntry stores the successful analyses as one history entry and reports
// whether anything was written.
func (h *AnalyzeHandler) saveEntry(ctx context.Context, client, id string, now time.Time, upload *chartUpload, records []model.AnalysisRecord) bool {
	if h.history == nil || len(records) == 0 {
		return false
	}

	entry := model.AnalysisEntry{
		ID:              id,
		Date:            now,
		ChartImage:      upload.input.DataURL(),
		ProfileSnapshot: upload.profile,
		Analyses:        records,
	}

	// the client may already have hung up on the stream
	if err := h.history.AddEntry(context.WithoutCancel(ctx), client, entry); err != nil {
		slog.Error("error saving analysis entry", "client_id", client, "entry_id", id, "error", err)
		return false
	}
	return true
}
