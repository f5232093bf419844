package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
	"github.com/fsrp/document-portal/internal/core/ports"
)

type viewerService struct {
	docs map[string]domain.Document
	log  zerolog.Logger
}

// NewViewerService returns a ViewerService over the given documents. State is
// kept per document in the session area.
func NewViewerService(docs []domain.Document, log zerolog.Logger) ports.ViewerService {
	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	return &viewerService{docs: byID, log: log}
}

func (s *viewerService) Document(id string) (domain.Document, bool) {
	d, ok := s.docs[id]
	return d, ok
}

func (s *viewerService) State(st *domain.Storage, doc string) domain.ViewerState {
	state := domain.NewViewerState()
	if _, err := st.JSON(domain.AreaSession, domain.ViewerKey(doc), &state); err != nil {
		s.log.Warn().Err(err).Str("document", doc).Msg("viewer state unreadable, resetting")
		return domain.NewViewerState()
	}
	return state
}

func (s *viewerService) save(st *domain.Storage, doc string, state domain.ViewerState) error {
	if err := st.SetJSON(domain.AreaSession, domain.ViewerKey(doc), state); err != nil {
		return fmt.Errorf("save viewer state: %w", err)
	}
	return nil
}

func (s *viewerService) Apply(st *domain.Storage, doc string, action domain.ViewerAction) (domain.ViewerState, error) {
	current := s.State(st, doc)
	next, err := current.Apply(action)
	if err != nil {
		return current, fmt.Errorf("%w: %q", err, action)
	}
	if next != current {
		if err := s.save(st, doc, next); err != nil {
			return current, err
		}
	}
	return next, nil
}

// Key applies the action bound to a keyboard shortcut.
func (s *viewerService) Key(st *domain.Storage, doc, key string, ctrl bool) (domain.ViewerState, domain.ViewerAction, error) {
	action, ok := domain.KeyAction(key, ctrl)
	if !ok {
		return s.State(st, doc), "", fmt.Errorf("%w: key %q", domain.ErrUnknownViewerAction, key)
	}
	state, err := s.Apply(st, doc, action)
	return state, action, err
}

func (s *viewerService) SetTotalPages(st *domain.Storage, doc string, total int) (domain.ViewerState, error) {
	state := s.State(st, doc).WithTotalPages(total)
	if err := s.save(st, doc, state); err != nil {
		return state, err
	}
	return state, nil
}
