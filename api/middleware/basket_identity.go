package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/homeshopping/homeshopping-backend/api/responses"
	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

// BasketResolver resolves and re-signs the basket reference for a request.
type BasketResolver interface {
	Resolve(ctx context.Context, rc basket.RequestContext) (*basket.Session, error)
	IssueToken(session *basket.Session) (string, bool, error)
}

// BasketIdentity resolves the caller's basket once per request and stores the
// session in the context. The basket cookie is written back just before the
// response headers go out, so a basket persisted by the handler gets a
// reference in the same response.
func BasketIdentity(resolver BasketResolver, cfg config.BasketConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := basket.RequestContext{Actor: ActorFromContext(r.Context())}
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				rc.BasketToken = cookie.Value
			}

			session, err := resolver.Resolve(r.Context(), rc)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSession(r.Context(), session)
			if logg != nil && session.Basket.IsPersisted() {
				ctx = logg.WithBasketID(ctx, session.Basket.ID)
			}
			cw := &basketCookieWriter{
				ResponseWriter: w,
				ctx:            ctx,
				resolver:       resolver,
				session:        session,
				cfg:            cfg,
				logg:           logg,
			}
			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.flushCookie()
		})
	}
}

type basketCookieWriter struct {
	http.ResponseWriter
	ctx      context.Context
	resolver BasketResolver
	session  *basket.Session
	cfg      config.BasketConfig
	logg     *logger.Logger
	done     bool
}

func (w *basketCookieWriter) WriteHeader(status int) {
	w.flushCookie()
	w.ResponseWriter.WriteHeader(status)
}

func (w *basketCookieWriter) Write(b []byte) (int, error) {
	w.flushCookie()
	return w.ResponseWriter.Write(b)
}

func (w *basketCookieWriter) flushCookie() {
	if w.done {
		return
	}
	w.done = true

	token, ok, err := w.resolver.IssueToken(w.session)
	if err != nil {
		if w.logg != nil {
			w.logg.Error(w.ctx, "sign basket reference", err)
		}
		return
	}
	switch {
	case ok:
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     w.cfg.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(w.cfg.CookieLifetime),
			MaxAge:   int(w.cfg.CookieLifetime.Seconds()),
			HttpOnly: true,
			Secure:   w.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	case w.session.ClearToken:
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     w.cfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   w.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
