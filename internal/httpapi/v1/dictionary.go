package v1

import (
	"net/http"

	"github.com/tinoosan/networth/internal/dictionary"
	"github.com/tinoosan/networth/internal/networth"
)

// GET /v1/dictionary/categories?kind=
func (s *Server) getCategoriesDictionary(w http.ResponseWriter, r *http.Request) {
	var items []networth.Category
	switch kind := networth.CategoryKind(r.URL.Query().Get("kind")); kind {
	case "":
		items = dictionary.Categories()
	case networth.KindAsset, networth.KindLiability:
		items = dictionary.CategoriesOf(kind)
	default:
		badRequest(w, "invalid kind: expected asset or liability")
		return
	}
	toJSON(w, http.StatusOK, categoriesResponse{Items: items})
}
