package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

type mockInvestmentService struct {
	createInvestmentFn  func(name, investmentType string) (*models.Investment, error)
	getInvestmentByIDFn func(id uint) (*models.Investment, error)
	listInvestmentsFn   func(page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	deleteInvestmentFn  func(id uint) error
}

func (m *mockInvestmentService) CreateInvestment(name, investmentType string) (*models.Investment, error) {
	if m.createInvestmentFn != nil {
		return m.createInvestmentFn(name, investmentType)
	}
	return &models.Investment{}, nil
}

func (m *mockInvestmentService) GetInvestmentByID(id uint) (*models.Investment, error) {
	if m.getInvestmentByIDFn != nil {
		return m.getInvestmentByIDFn(id)
	}
	return &models.Investment{Base: models.Base{ID: id}}, nil
}

func (m *mockInvestmentService) ListInvestments(page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	if m.listInvestmentsFn != nil {
		return m.listInvestmentsFn(page)
	}
	page.Defaults()
	result := pagination.NewPageResponse([]models.Investment{}, page.Page, page.PageSize, 0)
	return &result, nil
}

func (m *mockInvestmentService) DeleteInvestment(id uint) error {
	if m.deleteInvestmentFn != nil {
		return m.deleteInvestmentFn(id)
	}
	return nil
}

func setupInvestmentRouter(handler *InvestmentHandler) *gin.Engine {
	r := gin.New()
	r.POST("/pipeline/investments", handler.CreateInvestment)
	r.DELETE("/pipeline/investments/:id", handler.DeleteInvestment)
	r.GET("/investments", handler.ListInvestments)
	r.GET("/investments/:id", handler.GetInvestment)
	return r
}

func TestInvestmentHandler_CreateInvestment(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockInvestmentService{
			createInvestmentFn: func(name, investmentType string) (*models.Investment, error) {
				return &models.Investment{Base: models.Base{ID: 1}, Name: name, Type: investmentType}, nil
			},
		}
		handler := NewInvestmentHandler(svc)
		r := setupInvestmentRouter(handler)

		rec := doRequest(r, "POST", "/pipeline/investments", `{"name":"Acme Corp","type":"stock"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["name"] != "Acme Corp" {
			t.Errorf("expected name Acme Corp, got %v", result["name"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewInvestmentHandler(&mockInvestmentService{})
		r := setupInvestmentRouter(handler)

		rec := doRequest(r, "POST", "/pipeline/investments", `{"type":"stock"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestInvestmentHandler_DeleteInvestment(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deleted uint
		svc := &mockInvestmentService{
			deleteInvestmentFn: func(id uint) error {
				deleted = id
				return nil
			},
		}
		handler := NewInvestmentHandler(svc)
		r := setupInvestmentRouter(handler)

		rec := doRequest(r, "DELETE", "/pipeline/investments/5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if deleted != 5 {
			t.Errorf("expected investment 5 deleted, got %d", deleted)
		}
	})

	t.Run("returns 404 on unknown investment", func(t *testing.T) {
		svc := &mockInvestmentService{
			deleteInvestmentFn: func(_ uint) error {
				return apperrors.ErrInvestmentNotFound
			},
		}
		handler := NewInvestmentHandler(svc)
		r := setupInvestmentRouter(handler)

		rec := doRequest(r, "DELETE", "/pipeline/investments/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVESTMENT_NOT_FOUND")
	})
}

func TestInvestmentHandler_GetInvestment(t *testing.T) {
	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockInvestmentService{
			getInvestmentByIDFn: func(_ uint) (*models.Investment, error) {
				return nil, apperrors.ErrInvestmentNotFound
			},
		}
		handler := NewInvestmentHandler(svc)
		r := setupInvestmentRouter(handler)

		rec := doRequest(r, "GET", "/investments/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
