package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/savedfilters"
	"github.com/rebeliceyang/lazylist/internal/views"
)

const exportNoticeHeader = "X-Export-Notice"

// ListParams are the query parameters accepted by rows and export
type ListParams struct {
	Search string   `schema:"search"`
	Filter []string `schema:"filter"`
	Logic  string   `schema:"logic"`
	Quick  string   `schema:"quick"`
	Saved  string   `schema:"saved"`
	Sort   string   `schema:"sort"`
	Page   int      `schema:"page"`
	Size   int      `schema:"size"`
}

// Query converts the parameters into an engine query
func (p ListParams) Query() (listview.Query, error) {
	filters, err := listview.ParseFilterArgs(p.Filter)
	if err != nil {
		return listview.Query{}, err
	}
	q := listview.Query{
		Search:  p.Search,
		Filters: filters,
		Quick:   p.Quick,
		Saved:   p.Saved,
		Sort:    p.Sort,
	}
	if p.Logic != "" {
		q.Logic = models.ParseFilterLogic(p.Logic)
	}
	return q, nil
}

// ColumnResponse is a column with its preferences
type ColumnResponse struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
	Width   string `json:"width,omitempty"`
}

// ColumnsResponse is the body of the columns endpoints
type ColumnsResponse struct {
	Module  string                 `json:"module"`
	Columns []ColumnResponse       `json:"columns"`
	View    models.ColumnViewState `json:"view"`
}

// StateResponse echoes the applied list state
type StateResponse struct {
	Search  string             `json:"search,omitempty"`
	Filters map[string]string  `json:"filters"`
	Logic   models.FilterLogic `json:"logic"`
	Quick   string             `json:"quick,omitempty"`
	Sort    string             `json:"sort,omitempty"`
}

// RowsResponse is one page of filtered rows projected through the visible
// columns
type RowsResponse struct {
	Module  string              `json:"module"`
	Title   string              `json:"title"`
	Columns []ColumnResponse    `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Page    listview.PageInfo   `json:"page"`
	Total   int                 `json:"total"`
	State   StateResponse       `json:"state"`
}

// SaveFilterRequest is the body of POST /filters
type SaveFilterRequest struct {
	Name    string            `json:"name"`
	Filters map[string]string `json:"filters"`
	Logic   string            `json:"logic"`
	Quick   string            `json:"quick"`
}

// statusFor maps engine and store errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrUnknownView),
		errors.Is(err, savedfilters.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, listview.ErrUnknownQuickFilter),
		errors.Is(err, listview.ErrUnknownSavedFilter),
		errors.Is(err, listview.ErrUnknownColumn),
		errors.Is(err, listview.ErrEmptyFilterName):
		return http.StatusBadRequest
	case errors.Is(err, listview.ErrFeatureDisabled),
		errors.Is(err, listview.ErrNoSaveHandler):
		return http.StatusForbidden
	case errors.Is(err, export.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	respondError(w, status, err.Error())
}

func (s *Server) decodeParams(r *http.Request) (ListParams, error) {
	var params ListParams
	if err := s.decoder.Decode(&params, r.URL.Query()); err != nil {
		return params, fmt.Errorf("invalid query parameters: %w", err)
	}
	return params, nil
}

// prepare opens the request's module and applies q after loading rows
func (s *Server) prepare(r *http.Request, q listview.Query) (*views.View, error) {
	view, err := s.views.Open(r.Context(), mux.Vars(r)["module"])
	if err != nil {
		return nil, err
	}
	if err := view.Prepare(r.Context(), q); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	type module struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	modules := []module{}
	for _, name := range s.views.Modules() {
		modules = append(modules, module{Name: name, Title: s.views.Title(name)})
	}
	respondJSON(w, http.StatusOK, modules)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	params, err := s.decodeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := params.Query()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.prepare(r, q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e := view.Engine

	size := params.Size
	if size == 0 {
		size = s.pageSize
	}
	rows, page := e.Page(params.Page, size)

	cols := e.OrderedColumns()
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		cells := make(map[string]string, len(cols)+1)
		cells["id"] = row.ID()
		for _, col := range cols {
			cells[col.Key] = col.Cell(row)
		}
		out[i] = cells
	}

	state := e.State()
	respondJSON(w, http.StatusOK, RowsResponse{
		Module:  view.Module,
		Title:   view.Title,
		Columns: columnResponses(e.AllColumns(), true),
		Rows:    out,
		Page:    page,
		Total:   e.TotalCount(),
		State: StateResponse{
			Search:  state.Search,
			Filters: state.Filters,
			Logic:   state.Logic,
			Quick:   state.Quick,
			Sort:    state.Sort,
		},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	params, err := s.decodeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := params.Query()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.prepare(r, q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	result, err := view.Engine.Export(&buf, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if result.Notice != "" {
		w.Header().Set(exportNoticeHeader, result.Notice)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleGetColumns(w http.ResponseWriter, r *http.Request) {
	view, err := s.prepare(r, listview.Query{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, columnsResponse(view))
}

func (s *Server) handlePutColumns(w http.ResponseWriter, r *http.Request) {
	var state models.ColumnViewState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.prepare(r, listview.Query{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := view.Engine.SetColumnView(state); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, columnsResponse(view))
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.Open(r.Context(), mux.Vars(r)["module"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	filters := view.Engine.SavedFilters()
	if filters == nil {
		filters = []models.SavedFilter{}
	}
	respondJSON(w, http.StatusOK, filters)
}

func (s *Server) handleSaveFilter(w http.ResponseWriter, r *http.Request) {
	var req SaveFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := s.views.Open(r.Context(), mux.Vars(r)["module"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := listview.Query{Filters: req.Filters, Quick: req.Quick}
	if req.Logic != "" {
		q.Logic = models.ParseFilterLogic(req.Logic)
	}
	if err := view.Engine.Apply(q); err != nil {
		s.fail(w, r, err)
		return
	}
	if view.Engine.ActiveFilterCount() == 0 {
		respondError(w, http.StatusBadRequest, "No active filters to save")
		return
	}

	saved, err := view.Engine.SaveCurrentFilter(req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := s.views.Open(r.Context(), vars["module"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := view.Engine.DeleteSavedFilter(vars["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func columnsResponse(view *views.View) ColumnsResponse {
	return ColumnsResponse{
		Module:  view.Module,
		Columns: columnResponses(view.Engine.AllColumns(), false),
		View:    view.Engine.ColumnView(),
	}
}

func columnResponses(states []listview.ColumnState, visibleOnly bool) []ColumnResponse {
	out := make([]ColumnResponse, 0, len(states))
	for _, c := range states {
		if visibleOnly && !c.Visible {
			continue
		}
		out = append(out, ColumnResponse{Key: c.Key, Label: c.Label, Visible: c.Visible, Width: c.Width})
	}
	return out
}
