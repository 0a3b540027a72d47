package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/homeshopping/homeshopping-backend/internal/basket"
	"github.com/homeshopping/homeshopping-backend/pkg/config"
	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

type stubResolver struct {
	session  *basket.Session
	gotToken string
	issue    func(*basket.Session) (string, bool)
}

func (s *stubResolver) Resolve(_ context.Context, rc basket.RequestContext) (*basket.Session, error) {
	s.gotToken = rc.BasketToken
	return s.session, nil
}

func (s *stubResolver) IssueToken(session *basket.Session) (string, bool, error) {
	if s.issue == nil {
		return "", false, nil
	}
	token, ok := s.issue(session)
	return token, ok, nil
}

var testBasketCfg = config.BasketConfig{CookieName: "homeshop_open_basket", CookieLifetime: time.Hour}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestBasketIdentityIssuesCookieAfterHandlerPersistsBasket(t *testing.T) {
	session := &basket.Session{Basket: &models.Basket{Status: enums.BasketStatusOpen}}
	resolver := &stubResolver{
		session: session,
		issue: func(s *basket.Session) (string, bool) {
			if !s.Basket.IsPersisted() {
				return "", false
			}
			return "signed-42", true
		},
	}
	h := BasketIdentity(resolver, testBasketCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := SessionFromContext(r.Context())
		if !ok || got != session {
			t.Fatal("session missing from context")
		}
		got.Basket.ID = 42
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/basket/add-product", nil)
	req.AddCookie(&http.Cookie{Name: testBasketCfg.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if resolver.gotToken != "stale" {
		t.Fatalf("resolver did not receive cookie value, got %q", resolver.gotToken)
	}
	cookie := findCookie(rec, testBasketCfg.CookieName)
	if cookie == nil || cookie.Value != "signed-42" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
}

func TestBasketIdentityClearsRejectedReference(t *testing.T) {
	resolver := &stubResolver{session: &basket.Session{
		Basket:     &models.Basket{Status: enums.BasketStatusOpen},
		ClearToken: true,
	}}
	h := BasketIdentity(resolver, testBasketCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/basket", nil))

	cookie := findCookie(rec, testBasketCfg.CookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected deletion cookie, got %+v", cookie)
	}
}

func TestBasketIdentityWritesCookieWhenHandlerWritesNothing(t *testing.T) {
	resolver := &stubResolver{
		session: &basket.Session{Basket: &models.Basket{ID: 9, Status: enums.BasketStatusOpen}},
		issue:   func(*basket.Session) (string, bool) { return "signed-9", true },
	}
	h := BasketIdentity(resolver, testBasketCfg, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/basket", nil))

	if cookie := findCookie(rec, testBasketCfg.CookieName); cookie == nil || cookie.Value != "signed-9" {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
}
