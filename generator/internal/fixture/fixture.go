// Package fixture is a small application wired by sabergen. Its generated
// wiring lives in package di and is checked against the generator output.
package fixture

//go:generate go run github.com/junioryono/saber/cmd/sabergen build --source declarations.yaml --out di --package di

import (
	"errors"
	"sync/atomic"

	"github.com/junioryono/saber"
)

var (
	ErrNoDSN       = errors.New("fixture: empty dsn")
	ErrUnknownUser = errors.New("fixture: unknown user")
)

type Config struct {
	DSN string
}

func NewConfig() *Config {
	return &Config{DSN: "memory://fixture"}
}

func DSN(cfg *Config) string {
	return cfg.DSN
}

type Repository interface {
	Lookup(user string) bool
}

// Store is shared by every request of an application.
type Store struct {
	DSN string
}

func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	return &Store{DSN: dsn}, nil
}

func (s *Store) Lookup(user string) bool {
	return user != ""
}

type Request struct {
	ID int64
}

var requestIDs atomic.Int64

func NewRequest() *Request {
	return &Request{ID: requestIDs.Add(1)}
}

// Session is built by a SessionFactory; Config is injected afterwards.
type Session struct {
	User    string
	Request *Request
	Config  *Config
}

func NewSession(req *Request, user string) *Session {
	return &Session{User: user, Request: req}
}

type SessionFactory interface {
	New(user string) (*Session, error)
}

type Handler struct {
	Repository Repository
	Sessions   SessionFactory
	Config     *saber.Lazy[*Config]
	Injector   *saber.Injector
}

func NewHandler(repo Repository, sessions SessionFactory, cfg *saber.Lazy[*Config], inj *saber.Injector) *Handler {
	return &Handler{Repository: repo, Sessions: sessions, Config: cfg, Injector: inj}
}

// Login opens a session for a known user.
func (h *Handler) Login(user string) (*Session, error) {
	if !h.Repository.Lookup(user) {
		return nil, ErrUnknownUser
	}
	return h.Sessions.New(user)
}

type Page struct {
	Store *Store

	requests saber.Factory[*Request]
}

func (p *Page) SetRequests(requests saber.Factory[*Request]) {
	p.requests = requests
}

func (p *Page) Request() (*Request, error) {
	return p.requests.Get()
}

type AppContract interface {
	Config() (*Config, error)
	Repository() (Repository, error)
}

type RequestContract interface {
	Handler() (*Handler, error)
	Requests() (saber.Factory[*Request], error)
}
