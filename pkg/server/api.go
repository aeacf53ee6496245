//go:build !wasm

package server

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/recera/famtree/internal/cache"
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/live"
	"github.com/recera/famtree/pkg/search"
	"github.com/recera/famtree/pkg/vdom"
)

// maxSearchLimit bounds the limit query parameter.
const maxSearchLimit = 100

// Config wires the HTTP server to its dependencies.
type Config struct {
	Store *family.Store
	// Page renders GET /. Nil leaves the route unregistered.
	Page HandlerFunc
	// Live serves /live/:session when set.
	Live *live.Server
	// Static serves /static/* when set.
	Static fs.FS
	// Cache holds encoded search results. Nil disables caching.
	Cache  *cache.Cache
	Logger *slog.Logger
}

// Server is the famtree HTTP application.
type Server struct {
	router *Router
	store  *family.Store
	live   *live.Server
	cache  *cache.Cache
	log    *slog.Logger

	mu       sync.RWMutex
	index    *search.Index
	revision uint64
}

// New builds the router and the server-side search index.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:   NewRouter(),
		store:    cfg.Store,
		live:     cfg.Live,
		cache:    cfg.Cache,
		log:      log,
		index:    search.NewIndex(cfg.Store.People()),
		revision: cfg.Store.Revision(),
	}
	s.router.SetLogger(log)

	if cfg.Page != nil {
		s.router.AddRoute("/", cfg.Page)
	}
	s.router.AddAPIRoute("/api/people", s.people)
	s.router.AddAPIRoute("/api/people/:id", s.person)
	s.router.AddAPIRoute("/api/search", s.search)
	if s.live != nil {
		s.router.AddRoute("/live/:session", s.liveSession)
	}
	if cfg.Static != nil {
		files := http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static)))
		s.router.AddRoute("/static/*path", func(ctx Ctx) (*vdom.VNode, error) {
			files.ServeHTTP(ctx.Writer(), ctx.Request())
			return nil, nil
		})
	}
	return s
}

// Router exposes the router so callers can add routes or middleware.
func (s *Server) Router() *Router { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Apply brings the search index, the cache and live sessions up to date
// with a store change.
func (s *Server) Apply(change family.Change) {
	if change.Empty() {
		return
	}

	s.mu.Lock()
	old := s.revision
	for _, id := range change.Removed {
		s.index.Remove(id)
	}
	for _, p := range change.Added {
		s.index.Update(p)
	}
	s.revision = change.Revision
	s.mu.Unlock()

	if s.cache != nil {
		n := s.cache.InvalidateByDependency(revisionDep(old))
		s.log.Debug("search cache invalidated", "revision", old, "entries", n)
	}
	if s.live != nil {
		s.live.Apply(change)
	}
	s.log.Info("dataset updated",
		"revision", change.Revision,
		"added", len(change.Added),
		"removed", len(change.Removed))
}

// PersonResponse is a person with resolved relatives.
type PersonResponse struct {
	Person   family.Person   `json:"person"`
	Father   *family.Person  `json:"father,omitempty"`
	Mother   *family.Person  `json:"mother,omitempty"`
	Spouses  []family.Person `json:"spouses"`
	Children []family.Person `json:"children"`
}

// Match is one search hit.
type Match struct {
	ID    family.ID `json:"id"`
	Label string    `json:"label"`
}

// SearchResponse is the body of /api/search.
type SearchResponse struct {
	Query       string   `json:"query"`
	Matches     []Match  `json:"matches"`
	Total       int      `json:"total"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) people(ctx Ctx) (any, error) {
	return s.store.People(), nil
}

func (s *Server) person(ctx Ctx) (any, error) {
	id := family.ID(ctx.Param("id"))
	p, rel, ok := s.store.Relatives(id)
	if !ok {
		return nil, fmt.Errorf("person %q: %w", id, ErrNotFound)
	}
	resp := PersonResponse{
		Person:   p,
		Father:   rel.Father,
		Mother:   rel.Mother,
		Spouses:  nonNil(rel.Spouses),
		Children: nonNil(rel.Children),
	}
	return resp, nil
}

func (s *Server) search(ctx Ctx) (any, error) {
	q := ctx.Query().Get("q")
	limit := search.DefaultLimit
	if v := ctx.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSearchLimit {
			return nil, fmt.Errorf("limit %q: %w", v, ErrBadRequest)
		}
		limit = n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := cache.Key(strconv.FormatUint(s.revision, 10), q, strconv.Itoa(limit))
	if s.cache != nil {
		if b, ok := s.cache.Get(key); ok {
			ctx.SetHeader("X-Cache", "hit")
			return nil, ctx.Blob(http.StatusOK, "application/json", b)
		}
	}

	resp := s.find(q, limit)
	if s.cache == nil {
		return resp, nil
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode search result: %w", err)
	}
	b = append(b, '\n')
	s.cache.PutWithDeps(key, b, []string{revisionDep(s.revision)})
	ctx.SetHeader("X-Cache", "miss")
	return nil, ctx.Blob(http.StatusOK, "application/json", b)
}

// find must run with s.mu held.
func (s *Server) find(q string, limit int) SearchResponse {
	all := s.index.Filter(q)
	resp := SearchResponse{
		Query:   q,
		Matches: make([]Match, 0, min(len(all), limit)),
		Total:   len(all),
	}
	for _, o := range all[:min(len(all), limit)] {
		resp.Matches = append(resp.Matches, Match{ID: o.Value, Label: o.Label})
	}
	if len(all) == 0 && q != "" {
		resp.Suggestions = Suggest(s.index.Options(), q, maxSuggestions)
	}
	return resp
}

func (s *Server) liveSession(ctx Ctx) (*vdom.VNode, error) {
	s.live.HandleWebSocket(ctx.Writer(), ctx.Request(), ctx.Param("session"))
	return nil, nil
}

func revisionDep(rev uint64) string {
	return "rev:" + strconv.FormatUint(rev, 10)
}

func nonNil(people []family.Person) []family.Person {
	if people == nil {
		return []family.Person{}
	}
	return people
}
