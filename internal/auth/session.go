package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
)

const (
	SessionWorkspaceKey = "workspace_id"
	SessionSubjectKey   = "subject"
	SessionEmailKey     = "email"
	SessionNameKey      = "name"
)

// NewSessionManager creates an SCS session manager. store selects the
// backend: "memory" keeps sessions in process; "sqlite3", "mysql" and
// "postgres" use db, which must already be migrated.
func NewSessionManager(store string, db *sqlx.DB, lifetime time.Duration, secureCookies bool) (*scs.SessionManager, error) {
	sm := scs.New()
	switch store {
	case "", "memory":
		sm.Store = memstore.New()
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	case "sqlite3":
		sm.Store = sqlite3store.New(db.DB)
	default:
		return nil, fmt.Errorf("unsupported session store %q", store)
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime
	sm.Cookie.Name = "joe_pages_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm, nil
}
