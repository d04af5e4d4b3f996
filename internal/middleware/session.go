package middleware

import (
	"crypto/sha256"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"pcshop-storefront/internal/session"
)

const (
	SessionName = "pcshop-session"
	tokenKey    = "token"
	managerKey  = "session_manager"
)

// NewSessionStore creates the cookie store holding the bearer token. The
// cookie is signed and AES-encrypted with keys derived from secretKey, and
// HttpOnly so page scripts never see the token.
func NewSessionStore(secretKey string, secure bool) *sessions.CookieStore {
	hashKey := sha256.Sum256([]byte("pcshop-session-auth:" + secretKey))
	blockKey := sha256.Sum256([]byte("pcshop-session-enc:" + secretKey))
	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CookieTokenStore is a session.TokenStore backed by the request's cookie
// session. Save and Clear write the Set-Cookie header, so they must run
// before the response body.
type CookieTokenStore struct {
	c        *gin.Context
	sess     *sessions.Session
	defaults sessions.Options
}

func newCookieTokenStore(c *gin.Context, sess *sessions.Session) *CookieTokenStore {
	return &CookieTokenStore{c: c, sess: sess, defaults: *sess.Options}
}

func (s *CookieTokenStore) Load() (string, error) {
	token, _ := s.sess.Values[tokenKey].(string)
	return token, nil
}

// Save writes the token with the store's cookie options, undoing any
// earlier Clear in the same request.
func (s *CookieTokenStore) Save(token string) error {
	opts := s.defaults
	s.sess.Options = &opts
	s.sess.Values[tokenKey] = token
	return s.sess.Save(s.c.Request, s.c.Writer)
}

func (s *CookieTokenStore) Clear() error {
	opts := s.defaults
	opts.MaxAge = -1
	s.sess.Options = &opts
	delete(s.sess.Values, tokenKey)
	return s.sess.Save(s.c.Request, s.c.Writer)
}

// SessionMiddleware gives every request a session.Manager over its cookie.
func SessionMiddleware(store sessions.Store, auth session.Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, SessionName)
		if err != nil {
			// A cookie signed with another key or otherwise corrupt.
			logger.Debug("Discarding unreadable session cookie", zap.Error(err))
			if sess == nil {
				sess = sessions.NewSession(store, SessionName)
			}
			sess.Values = make(map[interface{}]interface{})
		}
		if sess.Options == nil {
			sess.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
		}

		tokens := newCookieTokenStore(c, sess)
		mgr := session.NewManager(tokens, auth, logger)
		c.Set(managerKey, mgr)

		if s, ok := mgr.Current(); ok {
			c.Set("user_id", s.UserID)
		}
		c.Next()
	}
}

// GetManager returns the request's session manager.
func GetManager(c *gin.Context) *session.Manager {
	v, exists := c.Get(managerKey)
	if !exists {
		return session.NewManager(session.NewMemoryStore(""), nil, nil)
	}
	return v.(*session.Manager)
}
