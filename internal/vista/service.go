package vista

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"membership-api/internal/catalog"
	"membership-api/internal/domain"
	"membership-api/internal/query"
	"membership-api/internal/repository"

	"github.com/google/uuid"
)

// Mode names how a resolution arrived at its spec.
type Mode string

const (
	// ModeSession replays a query stashed by a prior request.
	ModeSession Mode = "session"
	// ModeSubmit parses a freshly submitted filter form.
	ModeSubmit Mode = "submit"
	// ModeRetrieve loads a saved vista by name.
	ModeRetrieve Mode = "retrieve"
	// ModeDefault loads the user's default vista, or the view's
	// built-in defaults when none is saved.
	ModeDefault Mode = "default"
	// ModeLatest reuses the most recently used vista.
	ModeLatest Mode = "latest"
)

// Settings configure resolution for one list view.
type Settings struct {
	ModelName       string
	Catalog         *catalog.Catalog
	Defaults        domain.QuerySpec
	MaxSearchKeys   int
	DefaultPageSize int
}

// Resolution is the outcome of resolving one list request.
type Resolution struct {
	Spec      domain.QuerySpec
	Mode      Mode
	VistaName string
}

// Service resolves list requests against saved vistas and the session
// hand-off store.
type Service struct {
	vistas   repository.VistaRepository
	sessions SessionStore
}

// NewService wires a resolution service.
func NewService(vistas repository.VistaRepository, sessions SessionStore) *Service {
	return &Service{vistas: vistas, sessions: sessions}
}

// Sessions exposes the hand-off store so mutation handlers can stash
// the query a redirect target should replay.
func (s *Service) Sessions() SessionStore {
	return s.sessions
}

// Resolve picks the request's query spec. Precedence: a session
// hand-off, then an explicitly submitted form, then retrieve-by-name,
// then the saved default, then the most recently used vista. A
// delete_vista flag is honoured as a side effect before resolution.
// Lookup misses never fail the request; they degrade down the chain.
func (s *Service) Resolve(ctx context.Context, settings Settings, userID uuid.UUID, values url.Values) (Resolution, error) {
	opts := query.Options{
		MaxSearchKeys:   settings.MaxSearchKeys,
		DefaultPageSize: settings.DefaultPageSize,
	}

	if values.Has("delete_vista") {
		name := strings.TrimSpace(values.Get("vista_name"))
		if err := s.vistas.Delete(ctx, userID, settings.ModelName, name); err != nil {
			log.Printf("[vista] delete %q failed: %v", name, err)
		}
	}

	if stashed, ok := s.sessions.Take(userID, settings.ModelName); ok {
		stored, err := url.ParseQuery(stashed)
		if err != nil {
			log.Printf("[vista] malformed session query dropped: %v", err)
		} else {
			spec := query.Parse(stored, settings.Catalog, opts)
			return Resolution{Spec: spec, Mode: ModeSession}, nil
		}
	}

	if values.Has("vista_query_submitted") {
		spec := query.Parse(values, settings.Catalog, opts)
		name := strings.TrimSpace(values.Get("vista_name"))
		// Anonymous requests apply the filters but never persist them.
		if name != "" && userID != uuid.Nil {
			saved := domain.Vista{
				UserID:    userID,
				ModelName: settings.ModelName,
				Name:      name,
				Spec:      spec,
				IsDefault: values.Has("make_default"),
			}
			if _, err := s.vistas.Save(ctx, saved); err != nil {
				return Resolution{}, err
			}
		}
		return Resolution{Spec: spec, Mode: ModeSubmit, VistaName: name}, nil
	}

	if values.Has("retrieve_vista") {
		name := strings.TrimSpace(values.Get("vista_name"))
		v, err := s.vistas.GetByName(ctx, userID, settings.ModelName, name)
		switch {
		case err == nil:
			s.touch(ctx, v.ID)
			return Resolution{Spec: s.withDefaults(v.Spec, settings), Mode: ModeRetrieve, VistaName: v.Name}, nil
		case errors.Is(err, repository.ErrNotFound):
			// Unknown name degrades to the default vista below.
		default:
			return Resolution{}, err
		}
		return s.resolveDefault(ctx, settings, userID)
	}

	if values.Has("default_vista") {
		return s.resolveDefault(ctx, settings, userID)
	}

	v, err := s.vistas.Latest(ctx, userID, settings.ModelName)
	switch {
	case err == nil:
		s.touch(ctx, v.ID)
		return Resolution{Spec: s.withDefaults(v.Spec, settings), Mode: ModeLatest, VistaName: v.Name}, nil
	case errors.Is(err, repository.ErrNotFound):
		return Resolution{Spec: s.withDefaults(settings.Defaults, settings), Mode: ModeLatest}, nil
	default:
		return Resolution{}, err
	}
}

func (s *Service) resolveDefault(ctx context.Context, settings Settings, userID uuid.UUID) (Resolution, error) {
	v, err := s.vistas.GetDefault(ctx, userID, settings.ModelName)
	switch {
	case err == nil:
		s.touch(ctx, v.ID)
		return Resolution{Spec: s.withDefaults(v.Spec, settings), Mode: ModeDefault, VistaName: v.Name}, nil
	case errors.Is(err, repository.ErrNotFound):
		return Resolution{Spec: s.withDefaults(settings.Defaults, settings), Mode: ModeDefault}, nil
	default:
		return Resolution{}, err
	}
}

// touch keeps last-used resolution tracking actual use. Failures only
// cost recency, so they are logged and swallowed.
func (s *Service) touch(ctx context.Context, id uuid.UUID) {
	if err := s.vistas.Touch(ctx, id); err != nil {
		log.Printf("[vista] touch failed: %v", err)
	}
}

func (s *Service) withDefaults(spec domain.QuerySpec, settings Settings) domain.QuerySpec {
	if spec.PageSize <= 0 {
		spec.PageSize = settings.DefaultPageSize
	}
	return spec
}
