package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/liver-report/internal/session"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
	"github.com/jwalitptl/liver-report/pkg/httputil"
)

const (
	HeaderSessionToken = "X-Session-Token"
	ContextSession     = "session"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// SessionMiddleware binds every request to a session. Clients that send no
// valid token are given a new session and a signed cookie.
type SessionMiddleware struct {
	store  session.Store
	tokens *session.Tokens
	config SessionConfig
}

func NewSessionMiddleware(store session.Store, tokens *session.Tokens, config SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{
		store:  store,
		tokens: tokens,
		config: config,
	}
}

func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := m.sessionID(c); ok {
			c.Set(ContextSession, session.Open(m.store, id))
			c.Next()
			return
		}

		sess := session.New(m.store)
		token, err := m.tokens.Issue(sess.ID())
		if err != nil {
			httputil.RespondWithError(c, apperrors.Internal(err), "")
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.config.CookieName, token, int(m.config.TTL.Seconds()), "/", "", m.config.Secure, true)
		c.Header(HeaderSessionToken, token)
		c.Set(ContextSession, sess)
		c.Next()
	}
}

func (m *SessionMiddleware) sessionID(c *gin.Context) (string, bool) {
	token := c.GetHeader(HeaderSessionToken)
	if token == "" {
		cookie, err := c.Cookie(m.config.CookieName)
		if err != nil {
			return "", false
		}
		token = cookie
	}
	id, err := m.tokens.Parse(token)
	if err != nil {
		return "", false
	}
	return id, true
}

// SessionFrom returns the session bound by SessionMiddleware.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
