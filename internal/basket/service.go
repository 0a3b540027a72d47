package basket

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

// Service exposes the basket operations behind the REST surface. Every call
// receives the Session resolved for the current request.
type Service interface {
	Describe(ctx context.Context, basket *models.Basket) (*BasketDTO, error)
	AddProductToBasket(ctx context.Context, session *Session, input AddProductInput) (*AddProductResult, error)
	ListBaskets(ctx context.Context, session *Session) ([]BasketDTO, error)
	GetBasket(ctx context.Context, session *Session, basketID uint64) (*BasketDTO, error)
	GetBasketLines(ctx context.Context, session *Session, basketID uint64) ([]LineDTO, error)
	GetLine(ctx context.Context, session *Session, basketID, lineID uint64) (*LineDTO, error)
	UpdateLineQuantity(ctx context.Context, session *Session, basketID, lineID uint64, quantity int) (*LineDTO, error)
	RemoveLine(ctx context.Context, session *Session, basketID, lineID uint64) error
	Merge(ctx context.Context, master, slave *models.Basket, policy MergePolicy) error
}

type AddProductInput struct {
	ProductID     uint64
	StockRecordID uint64
	Quantity      int
}

type AddProductResult struct {
	Line    LineDTO
	Created bool
	Basket  *BasketDTO
}

type service struct {
	repo      *Repository
	tx        txRunner
	validator *LineValidator
	logg      *logger.Logger
}

func NewService(repo *Repository, tx txRunner, validator *LineValidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if validator == nil {
		return nil, fmt.Errorf("line validator required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, validator: validator, logg: logg}, nil
}

func (s *service) Describe(ctx context.Context, basket *models.Basket) (*BasketDTO, error) {
	if !basket.IsPersisted() {
		return NewBasketDTO(basket, nil), nil
	}
	lines, err := s.repo.Lines(ctx, basket.ID)
	if err != nil {
		return nil, translateRead(err, "load basket lines")
	}
	return NewBasketDTO(basket, lines), nil
}

// AddProductToBasket pre-checks stock, then adds the product to the session
// basket, saving it first when it is still transient.
func (s *service) AddProductToBasket(ctx context.Context, session *Session, input AddProductInput) (*AddProductResult, error) {
	basket := session.Basket
	if !basket.CanBeEdited() {
		return nil, ErrNotEditable()
	}
	if err := s.validator.ValidateAdd(ctx, basket, input.ProductID, input.StockRecordID, input.Quantity); err != nil {
		return nil, err
	}

	transient := !basket.IsPersisted()
	var (
		line    *models.BasketLine
		created bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		line, created, err = AddProduct(ctx, s.repo.WithTx(tx), basket, input.ProductID, input.StockRecordID, input.Quantity)
		return err
	})
	if err != nil {
		if transient {
			basket.ID = 0
		}
		return nil, err
	}
	if transient {
		s.logg.Info(s.logg.WithBasketID(ctx, basket.ID), "basket created")
	}

	dto, err := s.Describe(ctx, basket)
	if err != nil {
		return nil, err
	}
	result := &AddProductResult{Created: created, Basket: dto, Line: NewLineDTO(*line)}
	for _, l := range dto.Lines {
		if l.ID == line.ID {
			result.Line = l
			break
		}
	}
	return result, nil
}

func (s *service) ListBaskets(ctx context.Context, session *Session) ([]BasketDTO, error) {
	out := []BasketDTO{}
	if !Allows(session, session.Basket) {
		return out, nil
	}
	dto, err := s.Describe(ctx, session.Basket)
	if err != nil {
		return nil, err
	}
	return append(out, *dto), nil
}

func (s *service) GetBasket(ctx context.Context, session *Session, basketID uint64) (*BasketDTO, error) {
	basket, err := s.loadBasket(ctx, session, basketID)
	if err != nil {
		return nil, err
	}
	return s.Describe(ctx, basket)
}

func (s *service) GetBasketLines(ctx context.Context, session *Session, basketID uint64) ([]LineDTO, error) {
	basket, err := s.loadBasket(ctx, session, basketID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, basket.ID)
	if err != nil {
		return nil, translateRead(err, "load basket lines")
	}
	out := make([]LineDTO, 0, len(lines))
	for _, line := range lines {
		out = append(out, NewLineDTO(line))
	}
	return out, nil
}

func (s *service) GetLine(ctx context.Context, session *Session, basketID, lineID uint64) (*LineDTO, error) {
	line, err := s.loadLine(ctx, session, basketID, lineID)
	if err != nil {
		return nil, err
	}
	dto := NewLineDTO(*line)
	return &dto, nil
}

// UpdateLineQuantity sets an absolute quantity, refusing anything above stock on hand.
func (s *service) UpdateLineQuantity(ctx context.Context, session *Session, basketID, lineID uint64, quantity int) (*LineDTO, error) {
	line, err := s.loadLine(ctx, session, basketID, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateQuantity(ctx, line, quantity); err != nil {
		return nil, err
	}
	line.Quantity = quantity
	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, translateWrite(err, "update basket line")
	}
	dto := NewLineDTO(*line)
	return &dto, nil
}

func (s *service) RemoveLine(ctx context.Context, session *Session, basketID, lineID uint64) error {
	line, err := s.loadLine(ctx, session, basketID, lineID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return translateWrite(err, "delete basket line")
	}
	return nil
}

// Merge folds slave into master atomically with the caller's policy.
func (s *service) Merge(ctx context.Context, master, slave *models.Basket, policy MergePolicy) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return Merge(ctx, s.repo.WithTx(tx), master, slave, policy)
	})
}

// loadBasket returns an editable basket the session may use. Baskets that are
// gone or no longer editable read as not found.
func (s *service) loadBasket(ctx context.Context, session *Session, basketID uint64) (*models.Basket, error) {
	basket, err := s.repo.FindEditableByID(ctx, basketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBasketNotFound()
	}
	if err != nil {
		return nil, translateRead(err, "load basket")
	}
	if !Allows(session, basket) {
		return nil, errForbidden()
	}
	return basket, nil
}

func (s *service) loadLine(ctx context.Context, session *Session, basketID, lineID uint64) (*models.BasketLine, error) {
	if _, err := s.loadBasket(ctx, session, basketID); err != nil {
		return nil, err
	}
	line, err := s.repo.FindLineByID(ctx, basketID, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errLineNotFound()
	}
	if err != nil {
		return nil, translateRead(err, "load basket line")
	}
	if !Allows(session, line) {
		return nil, errForbidden()
	}
	return line, nil
}
