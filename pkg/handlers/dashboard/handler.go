package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/data-lens/pkg/models/api"
	"github.com/de-tools/data-lens/pkg/models/domain"
	"github.com/de-tools/data-lens/pkg/services/aggregate"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/de-tools/data-lens/pkg/services/dataset"
	"github.com/de-tools/data-lens/pkg/services/export"
	"github.com/de-tools/data-lens/pkg/services/insight"
	"github.com/de-tools/data-lens/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultPreviewRows = 50
	maxUploadBytes     = 64 << 20 // 64 MiB
)

// Handler serves the dashboard's HTTP surface. All state lives in the
// injected session; the handler itself is stateless.
type Handler struct {
	session        *session.Session
	parsers        dataset.Registry
	renderer       insight.ChartRenderer
	producer       insight.Producer
	assembler      *export.Assembler
	insightTimeout time.Duration
}

type Dependencies struct {
	Session        *session.Session
	Parsers        dataset.Registry
	Renderer       insight.ChartRenderer
	Producer       insight.Producer
	Assembler      *export.Assembler
	InsightTimeout time.Duration
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		session:        deps.Session,
		parsers:        deps.Parsers,
		renderer:       deps.Renderer,
		producer:       deps.Producer,
		assembler:      deps.Assembler,
		insightTimeout: deps.InsightTimeout,
	}
}

// UploadDataset parses a multipart upload and makes it the session dataset,
// clearing all pending reports.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("missing upload file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	table, err := h.parsers.Parse(header.Filename, data)
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	h.session.LoadDataset(header.Filename, table)
	respondJSON(w, r, http.StatusCreated, h.summary(table))
}

// CleanDataset runs the cleaning pass over the raw upload.
func (h *Handler) CleanDataset(w http.ResponseWriter, r *http.Request) {
	raw, err := h.session.Raw()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	cleaned := dataset.Clean(raw)
	h.session.SetCleaned(cleaned)
	respondJSON(w, r, http.StatusOK, h.summary(cleaned))
}

// PreviewDataset returns the head of the current (cleaned) dataset.
func (h *Handler) PreviewDataset(w http.ResponseWriter, r *http.Request) {
	table, err := h.session.Dataset()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	rows := defaultPreviewRows
	if raw := r.URL.Query().Get("rows"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			rows = n
		}
	}

	respondJSON(w, r, http.StatusOK, toPreview(table, rows))
}

// ManualAnalysis aggregates, renders a chart, asks for an insight and
// appends a MANUAL record. A failed render degrades to a chartless record;
// a failed aggregation aborts with no record.
func (h *Handler) ManualAnalysis(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := h.session.BeginOp(); err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	defer h.session.EndOp()

	var req api.ManualAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	table, err := h.session.Dataset()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	op, err := aggregate.ParseOp(req.Aggregation)
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	kind, err := charts.ParseKind(req.ChartKind)
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	pivot, err := aggregate.Aggregate(table, req.CategoryColumn, req.NumericColumn, op)
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	record := domain.ReportRecord{
		SheetNameHint: fmt.Sprintf("%s_%s", req.CategoryColumn, req.NumericColumn),
		PivotTable:    pivot,
		Provenance:    domain.ProvenanceManual,
		CreatedAt:     time.Now(),
	}

	handle, err := h.renderer.Render(kind, pivot, req.CategoryColumn, aggregate.ValueColumnName(op, req.NumericColumn))
	if err != nil {
		logger.Warn().Err(err).Msg("chart render failed, appending chartless record")
	} else {
		record.ChartPath = handle.Path
		prompt := fmt.Sprintf("Generate a concise report from this %s chart of %q by %q.",
			kind, req.NumericColumn, req.CategoryColumn)
		record.Insight = insight.ChartInsight(r.Context(), h.producer, handle.Path, prompt, h.insightTimeout)
	}

	index := h.session.Store().Append(record, domain.BucketManual)
	respondJSON(w, r, http.StatusCreated, toReport(index, record))
}

// AutoAnalysis runs the bounded categorical-by-numeric sweep and appends the
// resulting AI records.
func (h *Handler) AutoAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.session.BeginOp(); err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	defer h.session.EndOp()

	table, err := h.session.Dataset()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	records := insight.AutoAnalyze(r.Context(), table, h.renderer, h.producer, h.insightTimeout)
	out := make([]api.Report, 0, len(records))
	for _, rec := range records {
		index := h.session.Store().Append(rec, domain.BucketAI)
		out = append(out, toReport(index, rec))
	}
	respondJSON(w, r, http.StatusCreated, out)
}

// AskQuestion answers a free-form question from the dataset profile.
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req api.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	table, err := h.session.Dataset()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	answer := insight.AnswerQuestion(r.Context(), h.producer, req.Question, insight.BuildProfile(table), h.insightTimeout)
	respondJSON(w, r, http.StatusOK, api.QuestionResponse{Answer: answer})
}

// ListReports returns both pending buckets.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Store().Snapshot()

	list := api.ReportList{Manual: []api.Report{}, AI: []api.Report{}}
	for i, rec := range snap.Manual {
		list.Manual = append(list.Manual, toReport(i, rec))
	}
	for i, rec := range snap.AI {
		list.AI = append(list.AI, toReport(i, rec))
	}
	respondJSON(w, r, http.StatusOK, list)
}

// RemoveReport deletes one record by bucket and position.
func (h *Handler) RemoveReport(w http.ResponseWriter, r *http.Request) {
	bucket := domain.Bucket(chi.URLParam(r, "bucket"))
	if bucket != domain.BucketManual && bucket != domain.BucketAI {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("unknown bucket %q", bucket))
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}

	if err := h.session.Store().Remove(bucket, index); err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportReports assembles every pending record into one spreadsheet document.
func (h *Handler) ExportReports(w http.ResponseWriter, r *http.Request) {
	if err := h.session.BeginOp(); err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	defer h.session.EndOp()

	var req api.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.BaseName == "" {
		req.BaseName = "all_reports_" + time.Now().Format("20060102_150405")
	}

	table, err := h.session.Dataset()
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}

	result, err := h.assembler.Assemble(r.Context(), table, h.session.Store().Snapshot(), req.BaseName)
	if err != nil {
		respondError(w, r, statusFor(err), err)
		return
	}
	respondJSON(w, r, http.StatusOK, api.ExportResponse{Path: result.Path, Sheets: result.Sheets})
}

func (h *Handler) summary(t *domain.Table) api.DatasetSummary {
	return api.DatasetSummary{
		Name:        h.session.Name(),
		Rows:        len(t.Rows),
		Columns:     t.Columns,
		Categorical: t.CategoricalColumns(),
		Numeric:     t.NumericColumns(),
		Cleaned:     h.session.IsCleaned(),
	}
}

func toPreview(t *domain.Table, maxRows int) api.TablePreview {
	head := t.Head(maxRows)
	preview := api.TablePreview{Columns: head.Columns, Total: len(t.Rows), Rows: [][]string{}}
	for _, row := range head.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Display()
		}
		preview.Rows = append(preview.Rows, cells)
	}
	return preview
}

func toReport(index int, rec domain.ReportRecord) api.Report {
	out := api.Report{
		Index:      index,
		SheetName:  rec.SheetNameHint,
		Provenance: string(rec.Provenance),
		ChartPath:  rec.ChartPath,
		HasChart:   rec.ChartPath != "",
		Insight:    rec.Insight,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.PivotTable != nil {
		out.Pivot = toPreview(rec.PivotTable, defaultPreviewRows)
	}
	return out
}

func statusFor(err error) int {
	var (
		inputErr *domain.InputError
		aggErr   *domain.AggregationError
		rendErr  *domain.RenderError
		asmErr   *domain.AssemblyError
	)
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoDataset):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &aggErr), errors.As(err, &rendErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &asmErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	respondJSON(w, r, status, api.Error{Message: err.Error()})
}
