package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-browser-search/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query string `json:"query"`
}

// MultiSearchRequest represents the JSON request for multi-search
type MultiSearchRequest struct {
	Queries []NamedSearchRequest `json:"queries" binding:"required"`
}

// NamedSearchRequest represents a single named search query in the request
type NamedSearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// SearchHandler handles search requests against the current snapshot.
// Request Body: SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}
	if result := ValidateQuery("query", req.Query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	results, err := api.session.Search(services.SearchQuery{QueryString: req.Query})
	if err != nil {
		SendSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// MultiSearchHandler runs several named queries against the same snapshot.
// Request Body: MultiSearchRequest
func (api *API) MultiSearchHandler(c *gin.Context) {
	var req MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}
	if result := ValidateMultiSearchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	query := services.MultiSearchQuery{Queries: make([]services.NamedSearchQuery, len(req.Queries))}
	for i, q := range req.Queries {
		query.Queries[i] = services.NamedSearchQuery{Name: strings.TrimSpace(q.Name), Query: q.Query}
	}

	results, err := api.session.MultiSearch(c.Request.Context(), query)
	if err != nil {
		SendSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
