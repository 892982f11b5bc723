package web

import (
	"encoding/csv"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/stockimport/internal/core"
)

const templateFilename = "inventory_import_template.csv"

// handleDownloadTemplate serves a header-only CSV with every recognised
// column, in the order the importer documents them.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+templateFilename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(core.TemplateHeader()); err != nil {
		slog.Error("write template", "error", err)
		return
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("write template", "error", err)
	}
}
