package v1

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/service/snapshot"
)

func (s *Server) postSnapshot(w http.ResponseWriter, r *http.Request) {
	// Request has already been validated and is present in context
	in, ok := r.Context().Value(ctxKeyPostSnapshot).(snapshot.Input)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	created, replay, err := s.snapshots.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err, "could not persist snapshot")
		return
	}
	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	} else {
		snapshotsCreatedTotal.Inc()
	}
	toJSON(w, status, s.present.created(created))
}

// listSnapshots handles GET /snapshots
func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFrom(r)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	views, err := s.snapshots.List(r.Context(), owner)
	if err != nil {
		s.writeServiceError(w, r, err, "could not fetch snapshots")
		return
	}
	out := listSnapshotsResponse{Items: make([]snapshotResponse, 0, len(views))}
	for _, v := range views {
		out.Items = append(out.Items, s.present.snapshot(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	v, err := s.snapshots.Get(r.Context(), owner, id)
	if err != nil {
		s.writeServiceError(w, r, err, "could not fetch snapshot")
		return
	}
	toJSON(w, http.StatusOK, s.present.snapshot(v))
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := s.ownerAndID(w, r)
	if !ok {
		return
	}
	if err := s.snapshots.Delete(r.Context(), owner, id); err != nil {
		s.writeServiceError(w, r, err, "could not delete snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ownerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := ownerFrom(r)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}
