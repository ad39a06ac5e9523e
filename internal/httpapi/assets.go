package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
)

//go:embed assets/*.js
var assetFS embed.FS

const userStyleAsset = "userstyle.js"

// asset godoc
// @Summary  Embedded viewer scripts
// @Tags     content
// @Produce  application/javascript
// @Param    name  path  string  true  "styleswitcher.js or userstyle.js"
// @Success  200
// @Failure  404  {object}  types.ErrorResponse
// @Router   /assets/{name} [get]
func (h *handlers) asset(w http.ResponseWriter, r *http.Request) {
	name := path.Base(chi.URLParam(r, "name"))
	var body []byte
	if name == userStyleAsset {
		if js := h.svc.UserStyle(); js != "" {
			body = []byte(js)
		}
	}
	if body == nil {
		b, err := fs.ReadFile(assetFS, "assets/"+name)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "no such asset: "+name)
			return
		}
		body = b
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(body)
}
