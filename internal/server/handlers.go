package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matthias/iso20022-toolkit/internal/codesets"
	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/diff"
	"github.com/matthias/iso20022-toolkit/internal/mapping"
	"github.com/matthias/iso20022-toolkit/internal/multicompare"
	"github.com/matthias/iso20022-toolkit/internal/types"
	"github.com/matthias/iso20022-toolkit/internal/xsd"
)

// maxUploadBytes caps the in-memory size of a multipart schema upload.
const maxUploadBytes = 10 << 20

// AnalyzeResponse represents the response for /api/analyze
type AnalyzeResponse struct {
	RunID string             `json:"run_id,omitempty"`
	Model *types.SchemaModel `json:"model"`
}

// CompareResponse represents the response for /api/compare
type CompareResponse struct {
	RunID  string                  `json:"run_id,omitempty"`
	Report *types.ComparisonReport `json:"report"`
}

// MultiCompareResponse represents the response for /api/multicompare
type MultiCompareResponse struct {
	RunID  string                       `json:"run_id,omitempty"`
	Report *types.MultiComparisonReport `json:"report"`
}

// MappingResponse represents the response for /api/mapping
type MappingResponse struct {
	RunID string             `json:"run_id,omitempty"`
	View  string             `json:"view"`
	Rows  []types.MappingRow `json:"rows"`
}

// RunsResponse represents the response for /api/runs
type RunsResponse struct {
	Runs []db.Run `json:"runs"`
}

// ArtifactsResponse represents the response for /api/runs/{id}/artifacts
type ArtifactsResponse struct {
	RunID     string               `json:"run_id"`
	Artifacts []db.ArtifactSummary `json:"artifacts"`
}

// requestOptions are the form fields shared by the analysis endpoints.
type requestOptions struct {
	MaxDepth int    `validate:"gte=0,lte=512"`
	Workers  int    `validate:"gte=0,lte=64"`
	View     string `validate:"omitempty,oneof=hierarchical flat mandatory"`
}

// parseOptions reads optional form values on top of the server defaults.
func (s *Server) parseOptions(r *http.Request) (requestOptions, error) {
	opts := requestOptions{
		MaxDepth: s.cfg.MaxDepth,
		Workers:  s.cfg.Workers,
		View:     "hierarchical",
	}
	if v := r.FormValue("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &ErrValidation{Field: "max_depth", Message: "must be an integer"}
		}
		opts.MaxDepth = n
	}
	if v := r.FormValue("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &ErrValidation{Field: "workers", Message: "must be an integer"}
		}
		opts.Workers = n
	}
	if v := r.FormValue("view"); v != "" {
		opts.View = v
	}
	if err := s.validate.Struct(opts); err != nil {
		return opts, &ErrValidation{Field: "options", Message: validationMessage(err)}
	}
	return opts, nil
}

// validationMessage extracts a readable message from validator errors.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Sprintf("%s failed on '%s'", f.Field(), f.Tag())
	}
	return err.Error()
}

// resolveUpload parses one uploaded schema file into a resolved model. The
// model name is the file name without its extension.
func resolveUpload(file multipart.File, header *multipart.FileHeader, maxDepth int) (*types.SchemaModel, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}
	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	doc, err := xsd.ParseDocument(name, data)
	if err != nil {
		return nil, err
	}
	return xsd.NewResolver(doc, xsd.WithMaxDepth(maxDepth)).Resolve()
}

// formSchema pulls a named schema file out of the multipart form and
// resolves it.
func (s *Server) formSchema(r *http.Request, field string, maxDepth int) (*types.SchemaModel, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: "schema file is required"}
	}
	defer file.Close()
	return resolveUpload(file, header, maxDepth)
}

// recordRun persists a completed operation and its artifact when a database
// is configured. Persistence failures are logged, not surfaced: the caller
// already holds the result.
func (s *Server) recordRun(ctx context.Context, operation string, schemaNames []string, save func(context.Context, uuid.UUID) error) (uuid.UUID, bool) {
	if s.db == nil {
		return uuid.Nil, false
	}
	runID, err := s.db.CreateRun(ctx, operation, schemaNames)
	if err != nil {
		log.Printf("Failed to record run: %v", err)
		return uuid.Nil, false
	}
	if err := save(ctx, runID); err != nil {
		log.Printf("Failed to save artifact: %v", err)
		_ = s.db.FailRun(ctx, runID, err.Error())
		return runID, true
	}
	if err := s.db.CompleteRun(ctx, runID); err != nil {
		log.Printf("Failed to complete run: %v", err)
	}
	return runID, true
}

// handleAnalyze resolves one uploaded schema into its structural model
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	opts, err := s.parseOptions(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	model, err := s.formSchema(r, "schema", opts.MaxDepth)
	if err != nil {
		s.errorResponse(w, resolutionStatus(err), err.Error())
		return
	}

	resp := AnalyzeResponse{Model: model}
	if runID, ok := s.recordRun(r.Context(), db.OperationAnalyze, []string{model.Name}, func(ctx context.Context, id uuid.UUID) error {
		return s.db.SaveJSONArtifact(ctx, id, "model", db.ArtifactModelJSON, model)
	}); ok {
		resp.RunID = runID.String()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleCompare diffs two uploaded schema versions
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	opts, err := s.parseOptions(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	left, err := s.formSchema(r, "left", opts.MaxDepth)
	if err != nil {
		s.errorResponse(w, resolutionStatus(err), err.Error())
		return
	}
	right, err := s.formSchema(r, "right", opts.MaxDepth)
	if err != nil {
		s.errorResponse(w, resolutionStatus(err), err.Error())
		return
	}

	report := diff.Compare(left, right)
	report.GeneratedAt = time.Now().UTC()

	resp := CompareResponse{Report: report}
	if runID, ok := s.recordRun(r.Context(), db.OperationCompare, []string{left.Name, right.Name}, func(ctx context.Context, id uuid.UUID) error {
		return s.db.SaveJSONArtifact(ctx, id, "report", db.ArtifactReportJSON, report)
	}); ok {
		resp.RunID = runID.String()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleMultiCompare compares an ordered chain of uploaded schema versions
func (s *Server) handleMultiCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	opts, err := s.parseOptions(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	headers := r.MultipartForm.File["schemas"]
	if len(headers) < 2 {
		s.errorResponse(w, http.StatusBadRequest, "At least two schema files are required")
		return
	}

	models := make([]*types.SchemaModel, 0, len(headers))
	names := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Failed to open upload "+header.Filename)
			return
		}
		model, err := resolveUpload(file, header, opts.MaxDepth)
		file.Close()
		if err != nil {
			s.errorResponse(w, resolutionStatus(err), err.Error())
			return
		}
		models = append(models, model)
		names = append(names, model.Name)
	}

	report, err := multicompare.Compare(r.Context(), models, multicompare.Options{Workers: opts.Workers})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Comparison failed: "+err.Error())
		return
	}
	report.GeneratedAt = time.Now().UTC()

	resp := MultiCompareResponse{Report: report}
	if runID, ok := s.recordRun(r.Context(), db.OperationMultiCompare, names, func(ctx context.Context, id uuid.UUID) error {
		return s.db.SaveJSONArtifact(ctx, id, "multi_report", db.ArtifactMultiReportJSON, report)
	}); ok {
		resp.RunID = runID.String()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleMapping generates a field-mapping template from an uploaded schema
func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	opts, err := s.parseOptions(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	model, err := s.formSchema(r, "schema", opts.MaxDepth)
	if err != nil {
		s.errorResponse(w, resolutionStatus(err), err.Error())
		return
	}

	codes, err := s.formCodeSets(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid code set document: "+err.Error())
		return
	}

	rows := mapping.Generate(model, codes, mapping.Options{})
	switch opts.View {
	case "flat":
		rows = mapping.Flat(rows)
	case "mandatory":
		rows = mapping.MandatoryOnly(rows)
	}

	resp := MappingResponse{View: opts.View, Rows: rows}
	if runID, ok := s.recordRun(r.Context(), db.OperationMapping, []string{model.Name}, func(ctx context.Context, id uuid.UUID) error {
		return s.db.SaveJSONArtifact(ctx, id, "mapping", db.ArtifactMappingJSON, rows)
	}); ok {
		resp.RunID = runID.String()
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// formCodeSets loads the optional code set upload, falling back to the
// server's configured code set file.
func (s *Server) formCodeSets(r *http.Request) (*codesets.CodeSets, error) {
	file, header, err := r.FormFile("codesets")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
		}
		return codesets.Parse(header.Filename, data)
	}
	if s.cfg.CodeSetPath != "" {
		return codesets.Load(s.cfg.CodeSetPath)
	}
	return nil, nil
}

// resolutionStatus maps schema parsing and resolution failures to 422 and
// anything else to 400.
func resolutionStatus(err error) int {
	var parseErr *xsd.ParseError
	var emptyErr *xsd.EmptySchemaError
	var recursionErr *xsd.RecursionError
	if errors.As(err, &parseErr) || errors.As(err, &emptyErr) || errors.As(err, &recursionErr) {
		return http.StatusUnprocessableEntity
	}
	return HTTPStatus(err)
}

// handleListRuns returns recent runs, optionally filtered
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	filters := db.RunFilters{
		Operation: r.URL.Query().Get("operation"),
		Status:    r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = n
	}

	runs, err := s.db.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}

	s.jsonResponse(w, http.StatusOK, RunsResponse{Runs: runs})
}

// handleGetRun returns one run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleDeleteRun removes a run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			notFound := &ErrRunNotFound{RunID: runID}
			s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListArtifacts returns the artifact listing of a run
func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if artifacts == nil {
		artifacts = []db.ArtifactSummary{}
	}

	s.jsonResponse(w, http.StatusOK, ArtifactsResponse{RunID: runID.String(), Artifacts: artifacts})
}

// handleGetArtifact returns one named artifact of a run
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.pathRunID(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Artifact name is required")
		return
	}

	artifact, err := s.db.GetArtifact(r.Context(), runID, name)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if artifact == nil {
		notFound := &ErrArtifactNotFound{RunID: runID, Name: name}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, artifact)
}

// requireDB rejects the request with 503 when no database is configured.
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		disabled := &ErrPersistenceDisabled{}
		s.errorResponse(w, HTTPStatus(disabled), disabled.Error())
		return false
	}
	return true
}

// pathRunID parses the {id} path segment as a run UUID.
func (s *Server) pathRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return uuid.Nil, false
	}
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return runID, true
}
