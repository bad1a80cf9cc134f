package increment

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrNoCredentials = errors.New("increment service requires a username and a password")

type HandlerParams struct {
	fx.In

	Config Config
	Log    *zap.Logger
}

// Handler serves the increment endpoint behind basic auth.
type Handler struct {
	username     []byte
	passwordHash []byte
	log          *zap.Logger
}

func NewHandler(params HandlerParams) (*Handler, error) {
	cfg := params.Config

	if cfg.Username == "" || (cfg.Password == "" && cfg.PasswordHash == "") {
		return nil, ErrNoCredentials
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	return &Handler{
		username:     []byte(cfg.Username),
		passwordHash: hash,
		log:          params.Log,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="increment"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		w.Header().Set("Allow", "PATCH, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	n, ok, err := ParseValue(body)
	if err != nil {
		h.log.Debug("invalid value", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	incremented := Increment(n)

	h.log.Debug("incremented",
		zap.Stringer("value", n),
		zap.Stringer("incremented", incremented),
	)

	// big.Int marshals to a bare JSON number
	res, err := json.Marshal(incremented)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res)
}

func (h *Handler) authorized(r *http.Request) bool {
	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), h.username) == 1
	passOK := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(password)) == nil

	return userOK && passOK
}
