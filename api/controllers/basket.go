package controllers

import (
	"net/http"

	"github.com/homeshopping/homeshopping-backend/api/responses"
	"github.com/homeshopping/homeshopping-backend/api/validators"
	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

type addProductRequest struct {
	ProductID     uint64 `json:"product_id" validate:"required"`
	StockRecordID uint64 `json:"stock_record_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

type updateLineRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CurrentBasket renders the basket resolved for this request. First-time
// anonymous visitors see a transient basket with a null id.
func CurrentBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := requestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Describe(r.Context(), session.Basket)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AddProductToBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := requestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addProductRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddProductToBasket(r.Context(), session, basket.AddProductInput{
			ProductID:     req.ProductID,
			StockRecordID: req.StockRecordID,
			Quantity:      req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result.Basket)
	}
}

func ListBaskets(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := requestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		baskets, err := svc.ListBaskets(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, baskets)
	}
}

func GetBasket(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, basketID, err := basketTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetBasket(r.Context(), session, basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func GetBasketLines(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, basketID, err := basketTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := svc.GetBasketLines(r.Context(), session, basketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

func GetBasketLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, basketID, lineID, err := lineTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.GetLine(r.Context(), session, basketID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

func UpdateBasketLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, basketID, lineID, err := lineTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateLineRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.UpdateLineQuantity(r.Context(), session, basketID, lineID, *req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

func DeleteBasketLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, basketID, lineID, err := lineTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveLine(r.Context(), session, basketID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func basketTarget(r *http.Request) (*basket.Session, uint64, error) {
	session, err := requestSession(r)
	if err != nil {
		return nil, 0, err
	}
	basketID, err := validators.ParseIDParam(r, "basketID")
	if err != nil {
		return nil, 0, err
	}
	return session, basketID, nil
}

func lineTarget(r *http.Request) (*basket.Session, uint64, uint64, error) {
	session, basketID, err := basketTarget(r)
	if err != nil {
		return nil, 0, 0, err
	}
	lineID, err := validators.ParseIDParam(r, "lineID")
	if err != nil {
		return nil, 0, 0, err
	}
	return session, basketID, lineID, nil
}
