package web

import (
	"net/http"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/go-chi/chi/v5"
)

// MovementsView is the JSON body of the item ledger endpoint.
type MovementsView struct {
	ItemID    string               `json:"itemId"`
	SKU       string               `json:"sku"`
	Name      string               `json:"name"`
	Quantity  int                  `json:"quantity"`
	Movements []core.StockMovement `json:"movements"`
}

// handleItemMovements lists the stock movements of one item, including the
// entries written by import merges.
func (s *Server) handleItemMovements(w http.ResponseWriter, r *http.Request) {
	item, movements, err := s.service.ItemMovements(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MovementsView{
		ItemID:    item.ID,
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  item.Quantity(),
		Movements: movements,
	})
}
