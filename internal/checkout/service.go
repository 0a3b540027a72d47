package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/internal/orders"
	product "github.com/homeshopping/homeshopping-backend/internal/products"
	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
	"github.com/homeshopping/homeshopping-backend/pkg/metrics"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox"
	"github.com/homeshopping/homeshopping-backend/pkg/outbox/payloads"
)

var emailCheck = validator.New()

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service turns an Open basket into an order.
type Service interface {
	Checkout(ctx context.Context, session *basket.Session, input Input) (*orders.OrderDTO, error)
}

// Input is the checkout request. GuestEmail is only read for anonymous callers.
type Input struct {
	BasketID        uint64
	GuestEmail      string
	ShippingAddress *ShippingAddressInput
}

type ShippingAddressInput struct {
	FirstName string
	LastName  string
	Line1     string
	Line2     string
	Phone     string
	Notes     string
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Tx       txRunner
	Baskets  *basket.Repository
	Orders   orders.Repository
	Products *product.Repository
	Ledger   *product.StockLedger
	Outbox   outboxPublisher
	Metrics  *metrics.CheckoutMetrics
	Config   config.BasketConfig
	Logger   *logger.Logger
}

type service struct {
	tx       txRunner
	baskets  *basket.Repository
	orders   orders.Repository
	products *product.Repository
	ledger   *product.StockLedger
	outbox   outboxPublisher
	metrics  *metrics.CheckoutMetrics
	cfg      config.BasketConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Baskets == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if deps.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:       deps.Tx,
		baskets:  deps.Baskets,
		orders:   deps.Orders,
		products: deps.Products,
		ledger:   deps.Ledger,
		outbox:   deps.Outbox,
		metrics:  deps.Metrics,
		cfg:      deps.Config,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Checkout validates the basket and, in one transaction, writes the order with
// its lines, decrements stock, freezes the basket and queues order events.
// Preconditions are checked in order: access, non-empty basket, guest email
// present then well formed, unused order number.
func (s *service) Checkout(ctx context.Context, session *basket.Session, input Input) (*orders.OrderDTO, error) {
	started := s.now()
	order, err := s.checkout(ctx, session, input)
	s.metrics.Observe(outcomeFor(err), s.now().Sub(started))
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) checkout(ctx context.Context, session *basket.Session, input Input) (*orders.OrderDTO, error) {
	target, err := s.baskets.FindByID(ctx, input.BasketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	if !basket.Allows(session, target) {
		return nil, errUnauthorized()
	}

	lines, err := s.baskets.Lines(ctx, target.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket lines")
	}
	if basket.NumItems(lines) <= 0 {
		return nil, errEmptyBasket()
	}

	anonymous := !session.Actor.IsAuthenticated()
	guestEmail := strings.TrimSpace(input.GuestEmail)
	if anonymous && guestEmail == "" {
		return nil, errGuestEmailRequired()
	}
	if anonymous && emailCheck.Var(guestEmail, "email,max=254") != nil {
		return nil, errInvalidGuestEmail()
	}
	if !anonymous {
		guestEmail = ""
	}

	number := OrderNumber(target.ID, s.cfg.OrderNumberOffset)
	exists, err := s.orders.NumberExists(ctx, number)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order number")
	}
	if exists {
		return nil, errDuplicateOrderNumber(number)
	}

	var orderID uint64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := s.placeOrder(ctx, tx, session, target, number, guestEmail, input.ShippingAddress)
		orderID = id
		return err
	})
	if err != nil {
		return nil, s.translate(err, number)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"basket_id":    target.ID,
		"order_id":     order.ID,
		"order_number": order.Number,
	})
	s.logg.Info(logCtx, "order placed")
	return orders.NewOrderDTO(order), nil
}

func (s *service) placeOrder(
	ctx context.Context,
	tx *gorm.DB,
	session *basket.Session,
	target *models.Basket,
	number, guestEmail string,
	address *ShippingAddressInput,
) (uint64, error) {
	baskets := s.baskets.WithTx(tx)
	ordersRepo := s.orders.WithTx(tx)
	productsRepo := s.products.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	current, err := baskets.FindEditableByID(ctx, target.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, basket.ErrNotEditable()
	}
	if err != nil {
		return 0, err
	}
	lines, err := baskets.Lines(ctx, current.ID)
	if err != nil {
		return 0, err
	}
	if basket.NumItems(lines) <= 0 {
		return 0, errEmptyBasket()
	}

	basketID := current.ID
	order := &models.Order{
		Number:     number,
		Total:      basket.TotalPrice(lines),
		GuestEmail: guestEmail,
		BasketID:   &basketID,
		UserID:     session.Actor.UserID,
	}
	if address != nil {
		row := &models.ShippingAddress{
			FirstName: address.FirstName,
			LastName:  address.LastName,
			Line1:     address.Line1,
			Line2:     address.Line2,
			Phone:     address.Phone,
			Notes:     address.Notes,
		}
		if err := ordersRepo.CreateShippingAddress(ctx, row); err != nil {
			return 0, err
		}
		order.ShippingAddressID = &row.ID
	}
	if err := ordersRepo.CreateOrder(ctx, order); err != nil {
		return 0, err
	}

	for _, line := range lines {
		if err := s.copyLine(ctx, ordersRepo, productsRepo, order.ID, line); err != nil {
			return 0, err
		}
		if err := s.decrement(ctx, ledger, line); err != nil {
			return 0, err
		}
	}

	if err := basket.Freeze(ctx, baskets, current); err != nil {
		return 0, err
	}
	return order.ID, s.emitEvents(ctx, tx, session, current, order, len(lines))
}

// copyLine snapshots a basket line and the product's attribute values.
func (s *service) copyLine(ctx context.Context, repo orders.Repository, products *product.Repository, orderID uint64, line models.BasketLine) error {
	productID := line.ProductID
	row := &models.OrderLine{
		OrderID:       orderID,
		ProductID:     &productID,
		StockRecordID: line.StockRecordID,
		Quantity:      line.Quantity,
	}
	if err := repo.CreateLine(ctx, row); err != nil {
		return err
	}

	detail, err := products.GetProductDetail(ctx, line.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	attrs := make([]models.OrderLineAttribute, 0, len(detail.AttributeValues))
	for _, value := range detail.AttributeValues {
		if value.Attribute == nil {
			continue
		}
		attrs = append(attrs, models.OrderLineAttribute{
			LineID: row.ID,
			Type:   value.Attribute.Code,
			Value:  product.RenderAttributeValue(value),
		})
	}
	return repo.CreateLineAttributes(ctx, attrs)
}

// decrement takes the line quantity off stock. Lines whose stock record is
// gone have nothing to decrement.
func (s *service) decrement(ctx context.Context, ledger *product.StockLedger, line models.BasketLine) error {
	if line.StockRecordID == nil || line.StockRecord == nil || line.Quantity == 0 {
		return nil
	}
	if s.cfg.StrictStock {
		return ledger.DecrementStockFloor(ctx, line.ProductID, *line.StockRecordID, line.Quantity)
	}
	return ledger.DecrementStock(ctx, line.ProductID, *line.StockRecordID, line.Quantity)
}

func (s *service) emitEvents(ctx context.Context, tx *gorm.DB, session *basket.Session, target *models.Basket, order *models.Order, lineCount int) error {
	actor := &outbox.ActorRef{UserID: session.Actor.UserID, Anonymous: !session.Actor.IsAuthenticated()}
	placedAt := s.now().UTC()

	email := order.GuestEmail
	if session.Actor.IsAuthenticated() {
		var user models.User
		if err := tx.WithContext(ctx).Select("id", "email").Where("id = ?", *session.Actor.UserID).Take(&user).Error; err == nil {
			email = user.Email
		}
	}

	placed := outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   strconv.FormatUint(order.ID, 10),
		Actor:         actor,
		OccurredAt:    placedAt,
		Data: payloads.OrderPlacedEvent{
			OrderID:   order.ID,
			Number:    order.Number,
			BasketID:  target.ID,
			UserID:    order.UserID,
			Email:     email,
			Total:     order.Total.StringFixed(2),
			LineCount: lineCount,
			PlacedAt:  placedAt,
		},
	}
	if err := s.outbox.Emit(ctx, tx, placed); err != nil {
		return err
	}

	frozen := outbox.DomainEvent{
		EventType:     enums.EventBasketFrozen,
		AggregateType: enums.AggregateBasket,
		AggregateID:   strconv.FormatUint(target.ID, 10),
		Actor:         actor,
		OccurredAt:    placedAt,
		Data:          payloads.BasketFrozenEvent{BasketID: target.ID},
	}
	return s.outbox.Emit(ctx, tx, frozen)
}

// translate maps failures from the order transaction onto typed errors.
func (s *service) translate(err error, number string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, models.ErrBasketNotEditable) {
		return basket.ErrNotEditable()
	}
	if db.IsUniqueViolation(err, "ux_orders_number") || db.IsUniqueViolation(err, "orders.number") {
		return errDuplicateOrderNumber(number)
	}
	if translated := db.TranslateIntegrity(err); pkgerrors.As(translated) != nil {
		return translated
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomePlaced
	case pkgerrors.IsCode(err, pkgerrors.CodeInternal), pkgerrors.IsCode(err, pkgerrors.CodeDependency):
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeRejected
	}
}
