package basket

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tokenCodec interface {
	Sign(basketID uint64, now time.Time) (string, error)
	Verify(token string) (uint64, bool)
}

// IdentityResolver picks the single basket a request operates on.
type IdentityResolver struct {
	repo  *Repository
	tx    txRunner
	codec tokenCodec
	logg  *logger.Logger
	now   func() time.Time
}

func NewIdentityResolver(repo *Repository, tx txRunner, codec tokenCodec, logg *logger.Logger) (*IdentityResolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if codec == nil {
		return nil, fmt.Errorf("basket token codec required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &IdentityResolver{repo: repo, tx: tx, codec: codec, logg: logg, now: time.Now}, nil
}

// Resolve returns the session for rc. Authenticated callers always get a
// persisted Open basket, with duplicates and any anonymous basket merged into
// it using keep-max. Anonymous callers get the referenced basket, or a
// transient one that is saved on first add.
func (r *IdentityResolver) Resolve(ctx context.Context, rc RequestContext) (*Session, error) {
	session := &Session{Actor: rc.Actor}
	referencedID, valid := r.codec.Verify(rc.BasketToken)
	if valid {
		session.presentedID = referencedID
	}
	if rc.BasketToken != "" && !valid {
		r.logg.Warn(ctx, "discarding invalid basket reference")
		session.ClearToken = true
	}

	if rc.Actor.IsAuthenticated() {
		basket, err := r.resolveOwned(ctx, rc.Actor, referencedID)
		if err != nil {
			return nil, err
		}
		session.Basket = basket
		if rc.BasketToken != "" {
			session.ClearToken = true
		}
		return session, nil
	}

	if valid {
		basket, err := r.repo.FindAnonymousOpen(ctx, referencedID)
		if err != nil {
			return nil, translateRead(err, "load anonymous basket")
		}
		if basket != nil {
			session.Basket = basket
			session.referencedID = basket.ID
			return session, nil
		}
		session.ClearToken = true
	}
	session.Basket = newTransientBasket(rc.Actor)
	return session, nil
}

func (r *IdentityResolver) resolveOwned(ctx context.Context, actor Actor, anonymousID uint64) (*models.Basket, error) {
	var survivor *models.Basket
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)
		baskets, err := repo.ListOpenByOwner(ctx, *actor.UserID)
		if err != nil {
			return translateRead(err, "list open baskets")
		}
		if len(baskets) == 0 {
			survivor = &models.Basket{OwnerID: actor.UserID, Status: enums.BasketStatusOpen}
			if err := repo.Create(ctx, survivor); err != nil {
				return translateWrite(err, "create basket")
			}
		} else {
			survivor = &baskets[0]
			for i := 1; i < len(baskets); i++ {
				logCtx := r.logg.WithFields(ctx, map[string]any{
					"basket_id":        survivor.ID,
					"merged_basket_id": baskets[i].ID,
				})
				r.logg.Warn(logCtx, "merging duplicate open basket")
				if err := Merge(ctx, repo, survivor, &baskets[i], MergeKeepMax); err != nil {
					return err
				}
			}
		}

		if anonymousID == 0 || anonymousID == survivor.ID {
			return nil
		}
		anonymous, err := repo.FindAnonymousOpen(ctx, anonymousID)
		if err != nil {
			return translateRead(err, "load anonymous basket")
		}
		if anonymous == nil {
			return nil
		}
		return Merge(ctx, repo, survivor, anonymous, MergeKeepMax)
	})
	if err != nil {
		return nil, err
	}
	return survivor, nil
}

// IssueToken signs a reference for the session's basket when the caller is
// anonymous and does not hold one yet. ok is false when nothing should be sent.
func (r *IdentityResolver) IssueToken(session *Session) (string, bool, error) {
	if !session.NeedsToken() {
		return "", false, nil
	}
	token, err := r.codec.Sign(session.Basket.ID, r.now())
	if err != nil {
		return "", false, err
	}
	session.referencedID = session.Basket.ID
	session.ClearToken = false
	return token, true, nil
}
