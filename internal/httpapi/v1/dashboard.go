package v1

import (
	"net/http"

	"github.com/tinoosan/networth/internal/networth"
)

// GET /v1/dashboard/summary?user_id=
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	sum, err := s.dashboard.Summary(r.Context(), owner)
	if err != nil {
		s.writeServiceError(w, r, err, "could not build summary")
		return
	}
	out := summaryResponse{UserID: owner, SnapshotCount: sum.Count}
	if sum.Latest != nil {
		pt := s.present.point(*sum.Latest)
		out.Latest = &pt
	}
	if sum.First != nil && sum.Last != nil {
		first, last := sum.First.Format(networth.DateLayout), sum.Last.Format(networth.DateLayout)
		out.FirstDate, out.LastDate = &first, &last
	}
	toJSON(w, http.StatusOK, out)
}

// GET /v1/dashboard/modules?user_id=
func (s *Server) getModules(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	mods, err := s.dashboard.Modules(r.Context(), owner)
	if err != nil {
		s.writeServiceError(w, r, err, "could not build modules")
		return
	}
	out := s.present.modules(mods)
	out.UserID = owner
	toJSON(w, http.StatusOK, out)
}

// GET /v1/dashboard/insights?user_id=&modules=a,b
func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	q, qok := r.Context().Value(ctxKeyInsights).(insightsQuery)
	if !ok || !qok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	insights, err := s.dashboard.Insights(r.Context(), owner, q.Modules)
	if err != nil {
		s.writeServiceError(w, r, err, "could not build insights")
		return
	}
	out := insightsResponse{UserID: owner, Items: make([]insightResponse, 0, len(insights))}
	for _, in := range insights {
		out.Items = append(out.Items, s.present.insight(in))
	}
	toJSON(w, http.StatusOK, out)
}

// GET /v1/dashboard/series?user_id=&limit=
func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	q, qok := r.Context().Value(ctxKeySeries).(seriesQuery)
	if !ok || !qok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	pts, err := s.dashboard.Series(r.Context(), owner, q.Limit)
	if err != nil {
		s.writeServiceError(w, r, err, "could not build series")
		return
	}
	out := seriesResponse{UserID: owner, Points: make([]pointResponse, 0, len(pts))}
	for _, pt := range pts {
		out.Points = append(out.Points, s.present.point(pt))
	}
	toJSON(w, http.StatusOK, out)
}
