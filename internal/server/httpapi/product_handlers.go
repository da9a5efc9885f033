package httpapi

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/dmitrijs2005/storekeeper/internal/server/services"
	"github.com/dmitrijs2005/storekeeper/internal/server/storage"
	"github.com/go-chi/chi/v5"
)

const orderSheetURLHeader = "X-Order-Sheet-URL"

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.products.Create(r.Context(), req.input())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, res)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := parsePageQuery(q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req := listProductsQuery{Name: q.Get("name"), Category: models.Category(q.Get("category")), pageQuery: page}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	take, pg := req.values()
	res, err := s.products.List(r.Context(), services.ListProductsInput{
		Name:     req.Name,
		Category: req.Category,
		Take:     take,
		Page:     pg,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) lowStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	qty, err := decimalParam(q, "stockQuantity")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	req := lowStockQuery{StockQuantity: qty, Category: models.Category(q.Get("category"))}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.products.LowStock(r.Context(), services.LowStockParams{
		StockQuantity: *req.StockQuantity,
		Category:      req.Category,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	res, err := s.products.ShowByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.products.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, res)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	res, err := s.products.DestroyByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

// generateOrder streams the workbook as an attachment and removes the local
// file once it has been written out.
func (s *Server) generateOrder(w http.ResponseWriter, r *http.Request) {
	var req generateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.check(req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sheet, err := s.products.GenerateOrderSheet(r.Context(), req.lines())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer func() {
		if err := s.products.DeleteFile(sheet.Path); err != nil {
			s.logger.Warn(r.Context(), "order sheet not removed", "path", sheet.Path, "error", err)
		}
	}()

	f, err := os.Open(sheet.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := filepath.Base(sheet.Path)
	w.Header().Set("Content-Type", storage.ContentType(name))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if sheet.URL != "" {
		w.Header().Set(orderSheetURLHeader, sheet.URL)
	}

	http.ServeContent(w, r, name, info.ModTime(), f)
}
