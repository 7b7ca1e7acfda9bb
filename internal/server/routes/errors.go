package routes

import (
	"errors"
	"net/http"

	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/vector"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusForError maps backend failures to response codes: unreachable or
// unbuilt stores are reported distinctly from generic server errors, and
// never as silently empty results.
func statusForError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, vector.ErrIndexMissing):
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "Vector index not built",
			Details: "run a rebuild before searching",
		}
	case errors.Is(err, docstore.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorResponse{
			Error: "Document store unavailable",
		}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
}
