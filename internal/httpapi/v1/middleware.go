package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/networth"
	"github.com/tinoosan/networth/internal/service/snapshot"
)

type ctxKey string

const ctxKeyPostSnapshot ctxKey = "validatedPostSnapshot"
const ctxKeyOwner ctxKey = "validatedOwner"
const ctxKeyInsights ctxKey = "validatedInsights"
const ctxKeySeries ctxKey = "validatedSeries"

// validatePostSnapshot decodes POST /snapshots, checks the structural rules and stores
// the snapshot.Input in the request context for the handler to use.
func (s *Server) validatePostSnapshot() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postSnapshotRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				toJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
				return
			}
			if req.UserID == uuid.Nil {
				badRequest(w, "user_id is required")
				return
			}
			if req.Date == "" {
				badRequest(w, "date is required")
				return
			}
			date, err := networth.ParseDate(req.Date)
			if err != nil {
				badRequest(w, "invalid date: expected YYYY-MM-DD")
				return
			}
			raw := bytes.TrimSpace(req.Accounts)
			if len(raw) == 0 || raw[0] != '[' {
				badRequest(w, "accounts must be an array")
				return
			}
			var accounts []postSnapshotAccount
			if err := json.Unmarshal(raw, &accounts); err != nil {
				badRequest(w, "invalid accounts: "+err.Error())
				return
			}

			in := snapshot.Input{
				OwnerID:        req.UserID,
				Date:           date,
				HoursInPeriod:  req.HoursInPeriod,
				Accounts:       make([]snapshot.AccountInput, 0, len(accounts)),
				IdempotencyKey: r.Header.Get("Idempotency-Key"),
			}
			for _, a := range accounts {
				in.Accounts = append(in.Accounts, snapshot.AccountInput{Name: a.Name, Type: a.Type, CategoryID: a.CategoryID, Balance: a.Balance})
			}
			if err := s.snapshots.Validate(in); err != nil {
				s.writeServiceError(w, r, err, "validation failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostSnapshot, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateOwner parses the required user_id query param.
func (s *Server) validateOwner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("user_id")
			if raw == "" {
				badRequest(w, "user_id is required")
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				badRequest(w, "invalid user_id")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyOwner, ownerQuery{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateInsights parses modules=a,b. An absent param selects every module; a present
// but empty one selects none.
func (s *Server) validateInsights() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var q insightsQuery
			if r.URL.Query().Has("modules") {
				q.Modules = []string{}
				known := finance.Modules()
				for _, m := range strings.Split(r.URL.Query().Get("modules"), ",") {
					m = strings.TrimSpace(m)
					if m == "" {
						continue
					}
					if !slices.Contains(known, m) {
						badRequest(w, "unknown module: "+m)
						return
					}
					q.Modules = append(q.Modules, m)
				}
			}
			ctx := context.WithValue(r.Context(), ctxKeyInsights, q)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateSeries parses the optional limit; 0 or absent returns every point.
func (s *Server) validateSeries() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var q seriesQuery
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 0 {
					badRequest(w, "invalid limit")
					return
				}
				q.Limit = n
			}
			ctx := context.WithValue(r.Context(), ctxKeySeries, q)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerFrom(r *http.Request) (uuid.UUID, bool) {
	q, ok := r.Context().Value(ctxKeyOwner).(ownerQuery)
	return q.UserID, ok
}
